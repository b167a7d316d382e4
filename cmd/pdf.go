package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/pdfscan/internal/pdfdoc"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// toolSpec describes one `pdf` subcommand.
type toolSpec struct {
	name    string
	short   string
	example string
	multi   bool
	// flags registers the tool's flags; finish copies values that need
	// parsing or presence checks into the params.
	flags  func(cmd *cobra.Command, p *pdfdoc.Params)
	finish func(cmd *cobra.Command, p *pdfdoc.Params) error
}

func newPDFCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdf",
		Short: "PDF utility tools",
		Long: `Tools for reworking existing PDF files: merge, split, rotate, page
selection, stamping, metadata and more.

Page lists accept numbers and inclusive ranges, e.g. "1,3-5,8". Pages
outside the document are ignored.`,
	}

	for _, spec := range toolSpecs() {
		cmd.AddCommand(newToolCmd(opts, spec))
	}
	cmd.AddCommand(newInfoCmd(opts))

	return cmd
}

func toolSpecs() []toolSpec {
	var (
		position string
		title    string
		author   string
		subject  string
		keywords string
	)

	pagesFlag := func(cmd *cobra.Command, p *pdfdoc.Params) {
		cmd.Flags().StringVar(&p.Pages, "pages", "", `Pages to use, e.g. "1,3-5"`)
		_ = cmd.MarkFlagRequired("pages")
	}
	watermarkFlags := func(cmd *cobra.Command, p *pdfdoc.Params) {
		cmd.Flags().StringVar(&p.Watermark.Text, "text", "", "Watermark text")
		cmd.Flags().IntVar(&p.Watermark.Opacity, "opacity", 30, "Watermark opacity in percent")
	}

	return []toolSpec{
		{
			name:    pdfdoc.ToolMerge,
			short:   "Combine several PDFs into one, in the order given",
			example: "  pdfscan pdf merge a.pdf b.pdf c.pdf -o merged.pdf",
			multi:   true,
		},
		{
			name:    pdfdoc.ToolSplit,
			short:   "Write every page to its own PDF",
			example: "  pdfscan pdf split book.pdf -o pages/",
		},
		{
			name:    pdfdoc.ToolRotate,
			short:   "Rotate every page by a multiple of 90 degrees",
			example: "  pdfscan pdf rotate scan.pdf --degrees 90",
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().IntVar(&p.Degrees, "degrees", 90, "Clockwise rotation (multiple of 90)")
			},
		},
		{
			name:    pdfdoc.ToolExtract,
			short:   "Keep only the listed pages",
			example: `  pdfscan pdf extract report.pdf --pages "1,3-5"`,
			flags:   pagesFlag,
		},
		{
			name:    pdfdoc.ToolReorder,
			short:   "Rebuild the document in a new page order",
			example: `  pdfscan pdf reorder report.pdf --order "3,1,2"`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().StringVar(&p.Order, "order", "", `New page order, e.g. "3,1,2"`)
				_ = cmd.MarkFlagRequired("order")
			},
		},
		{
			name:    pdfdoc.ToolDelete,
			short:   "Remove the listed pages",
			example: `  pdfscan pdf delete report.pdf --pages "2,4"`,
			flags:   pagesFlag,
		},
		{
			name:    pdfdoc.ToolDuplicate,
			short:   "Follow each listed page with extra copies",
			example: `  pdfscan pdf duplicate form.pdf --pages 1 --times 3`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				pagesFlag(cmd, p)
				cmd.Flags().IntVar(&p.Times, "times", 1, "Copies to add after each page")
			},
		},
		{
			name:    pdfdoc.ToolWatermark,
			short:   "Stamp diagonal text across every page",
			example: `  pdfscan pdf watermark draft.pdf --text CONFIDENTIAL --opacity 20`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				watermarkFlags(cmd, p)
				_ = cmd.MarkFlagRequired("text")
			},
		},
		{
			name:    pdfdoc.ToolDedupe,
			short:   "Drop pages whose size repeats an earlier page",
			example: "  pdfscan pdf dedupe scan.pdf",
		},
		{
			name:    pdfdoc.ToolReverse,
			short:   "Reverse the page order",
			example: "  pdfscan pdf reverse scan.pdf",
		},
		{
			name:    pdfdoc.ToolPageNumbers,
			short:   "Number every page",
			example: "  pdfscan pdf page-numbers book.pdf --position bottom-right --start 5",
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().StringVar(&position, "position", string(pdfdoc.BottomCenter),
					"One of "+positionNames())
				cmd.Flags().IntVar(&p.PageNumbers.Start, "start", 1, "Number of the first page")
			},
			finish: func(cmd *cobra.Command, p *pdfdoc.Params) error {
				pos, err := pdfdoc.ParsePosition(position)
				if err != nil {
					return err
				}
				p.PageNumbers.Position = pos
				return nil
			},
		},
		{
			name:    pdfdoc.ToolHeaderFooter,
			short:   "Add a centered header and/or footer to every page",
			example: `  pdfscan pdf header-footer minutes.pdf --header "Board Minutes" --footer "Draft"`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().StringVar(&p.HeaderFooter.Header, "header", "", "Header text")
				cmd.Flags().StringVar(&p.HeaderFooter.Footer, "footer", "", "Footer text")
			},
		},
		{
			name:    pdfdoc.ToolMetadata,
			short:   "Set the document title, author, subject or keywords",
			example: `  pdfscan pdf metadata thesis.pdf --title "On Scanning" --keywords "pdf, scanning"`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().StringVar(&title, "title", "", "Document title")
				cmd.Flags().StringVar(&author, "author", "", "Document author")
				cmd.Flags().StringVar(&subject, "subject", "", "Document subject")
				cmd.Flags().StringVar(&keywords, "keywords", "", "Comma separated keywords")
			},
			finish: func(cmd *cobra.Command, p *pdfdoc.Params) error {
				if cmd.Flags().Changed("title") {
					p.Metadata.Title = &title
				}
				if cmd.Flags().Changed("author") {
					p.Metadata.Author = &author
				}
				if cmd.Flags().Changed("subject") {
					p.Metadata.Subject = &subject
				}
				if cmd.Flags().Changed("keywords") {
					p.Metadata.Keywords = splitList(keywords)
				}
				if p.Metadata.IsEmpty() {
					return fmt.Errorf("set at least one of --title, --author, --subject, --keywords")
				}
				return nil
			},
		},
		{
			name:    pdfdoc.ToolBlank,
			short:   "Insert blank pages after the listed positions (0 = before page 1)",
			example: `  pdfscan pdf blank booklet.pdf --positions "0,4"`,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().StringVar(&p.Positions, "positions", "", `Insert positions, e.g. "0,2"`)
				_ = cmd.MarkFlagRequired("positions")
			},
		},
		{
			name:    pdfdoc.ToolCompress,
			short:   "Optimize and rewrite the document",
			example: "  pdfscan pdf compress large.pdf",
		},
		{
			name:    pdfdoc.ToolCrop,
			short:   "Trim a uniform margin from every page",
			example: "  pdfscan pdf crop scan.pdf --margin 36",
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().Float64Var(&p.Margin, "margin", 36, "Margin to trim from each side, in points")
			},
		},
		{
			name:    pdfdoc.ToolBatch,
			short:   "Rotate and/or watermark many PDFs independently",
			example: "  pdfscan pdf batch *.pdf --degrees 180 --text COPY -o processed/",
			multi:   true,
			flags: func(cmd *cobra.Command, p *pdfdoc.Params) {
				cmd.Flags().IntVar(&p.Degrees, "degrees", 0, "Clockwise rotation (multiple of 90)")
				watermarkFlags(cmd, p)
			},
		},
	}
}

func newToolCmd(opts *rootOptions, spec toolSpec) *cobra.Command {
	var (
		params pdfdoc.Params
		output string
	)
	params.Times = 1

	use := spec.name + " FILE"
	args := cobra.ExactArgs(1)
	if spec.multi {
		use = spec.name + " FILE..."
		args = cobra.MinimumNArgs(1)
	}

	cmd := &cobra.Command{
		Use:     use,
		Short:   spec.short,
		Example: spec.example,
		Args:    args,
		RunE: func(cmd *cobra.Command, args []string) error {
			if spec.finish != nil {
				if err := spec.finish(cmd, &params); err != nil {
					return err
				}
			}
			return executeTool(opts, spec.name, args, params, output)
		},
	}

	outputHelp := "Output PDF path (defaults to a name derived from the input)"
	if spec.name == pdfdoc.ToolSplit || spec.name == pdfdoc.ToolBatch {
		outputHelp = "Output directory"
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", outputHelp)
	if spec.flags != nil {
		spec.flags(cmd, &params)
	}

	return cmd
}

func executeTool(opts *rootOptions, tool string, paths []string, params pdfdoc.Params, output string) error {
	docs := make([]pdfdoc.NamedDocument, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		docs = append(docs, pdfdoc.NamedDocument{Name: filepath.Base(path), Data: data})
	}

	outputs, err := pdfdoc.NewProcessor(opts.cfg.TempDir).Run(tool, docs, params)
	if err != nil {
		return err
	}

	toDir := tool == pdfdoc.ToolSplit || tool == pdfdoc.ToolBatch
	if toDir {
		if output == "" {
			output = "."
		}
		if err := os.MkdirAll(output, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	failed := 0
	for _, out := range outputs {
		if out.Err != nil {
			failed++
			fmt.Printf("   ⚠️  %s: %v\n", out.Name, out.Err)
			continue
		}
		path := out.Name
		switch {
		case toDir:
			path = filepath.Join(output, out.Name)
		case output != "":
			path = output
		}
		if err := os.WriteFile(path, out.Data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Printf("✅ %s\n", path)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(outputs))
	}
	return nil
}

func newInfoCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "info FILE",
		Short:   "Show document metadata and page count",
		Example: "  pdfscan pdf info report.pdf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			info, err := pdfdoc.NewProcessor(opts.cfg.TempDir).Info(data)
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(info)
			if err != nil {
				return fmt.Errorf("failed to marshal YAML: %w", err)
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func positionNames() string {
	names := make([]string, len(pdfdoc.Positions))
	for i, p := range pdfdoc.Positions {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

func splitList(v string) []string {
	items := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
