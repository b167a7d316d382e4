package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/lehigh-university-libraries/pdfscan/internal/models"
	"github.com/lehigh-university-libraries/pdfscan/internal/pdfdoc"
)

// HandleTools runs one PDF tool: POST /api/tools/{tool}.
func (h *Handler) HandleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	tool := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tools/"), "/")

	if !h.parseMultipart(w, r) {
		return
	}

	files := uploadedFiles(r, "files", "file")
	if len(files) == 0 {
		h.writeError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	docs := make([]pdfdoc.NamedDocument, 0, len(files))
	for _, fh := range files {
		data, err := h.readUpload(fh)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		docs = append(docs, pdfdoc.NamedDocument{Name: fh.Filename, Data: data})
	}

	if tool == "info" {
		info, err := h.processor.Info(docs[0].Data)
		if err != nil {
			h.writeErr(w, err)
			return
		}
		h.writeJSON(w, info)
		return
	}

	params, err := toolParams(r)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	outputs, err := h.processor.Run(tool, docs, params)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	slog.Info("PDF tool finished", "tool", tool, "inputs", len(docs), "outputs", len(outputs))

	if len(outputs) == 1 && outputs[0].Err == nil && tool != pdfdoc.ToolSplit && tool != pdfdoc.ToolBatch {
		writePDF(w, outputs[0].Name, outputs[0].Data)
		return
	}

	archive, err := zipOutputs(outputs)
	if err != nil {
		h.writeError(w, "Failed to build archive: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tool+".zip"))
	if _, err := w.Write(archive); err != nil {
		slog.Error("Unable to write archive response", "tool", tool, "err", err)
	}
}

// toolParams reads every tool field from the form. Fields a tool does not
// use are ignored by that tool.
func toolParams(r *http.Request) (pdfdoc.Params, error) {
	p := pdfdoc.Params{
		Pages:     r.FormValue("pages"),
		Order:     r.FormValue("order"),
		Positions: r.FormValue("positions"),
		Times:     1,
		Watermark: pdfdoc.WatermarkOptions{
			Text:    r.FormValue("text"),
			Opacity: 30,
		},
		PageNumbers: pdfdoc.PageNumberOptions{Start: 1},
		HeaderFooter: pdfdoc.HeaderFooterOptions{
			Header: r.FormValue("header"),
			Footer: r.FormValue("footer"),
		},
	}

	var err error
	if p.Degrees, err = formInt(r, "degrees", 0); err != nil {
		return p, err
	}
	if p.Times, err = formInt(r, "times", p.Times); err != nil {
		return p, err
	}
	if p.Watermark.Opacity, err = formInt(r, "opacity", p.Watermark.Opacity); err != nil {
		return p, err
	}
	if p.PageNumbers.Start, err = formInt(r, "start", p.PageNumbers.Start); err != nil {
		return p, err
	}
	if v := r.FormValue("margin"); v != "" {
		if p.Margin, err = strconv.ParseFloat(v, 64); err != nil {
			return p, fmt.Errorf("invalid margin value %q", v)
		}
	}
	if p.PageNumbers.Position, err = pdfdoc.ParsePosition(r.FormValue("position")); err != nil {
		return p, err
	}
	p.Metadata = formMetadata(r)
	return p, nil
}

func formInt(r *http.Request, field string, def int) (int, error) {
	v := r.FormValue(field)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", field, v)
	}
	return n, nil
}

// formMetadata sets only the fields present in the request, so an empty
// value clears a field while an absent one leaves it alone.
func formMetadata(r *http.Request) models.DocumentMetadata {
	var meta models.DocumentMetadata
	present := func(field string) (string, bool) {
		if r.MultipartForm == nil {
			return "", false
		}
		vals, ok := r.MultipartForm.Value[field]
		if !ok || len(vals) == 0 {
			return "", false
		}
		return vals[0], true
	}
	if v, ok := present("title"); ok {
		meta.Title = &v
	}
	if v, ok := present("author"); ok {
		meta.Author = &v
	}
	if v, ok := present("subject"); ok {
		meta.Subject = &v
	}
	if v, ok := present("keywords"); ok {
		meta.Keywords = splitKeywords(v)
	}
	return meta
}

func splitKeywords(v string) []string {
	keywords := []string{}
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// zipOutputs packs tool outputs into one archive. Failed batch documents
// are listed in errors.txt instead.
func zipOutputs(outputs []pdfdoc.Output) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var failures []string
	for _, out := range outputs {
		if out.Err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", out.Name, out.Err))
			continue
		}
		if err := addZipFile(zw, out.Name, out.Data); err != nil {
			return nil, err
		}
	}
	if len(failures) > 0 {
		if err := addZipFile(zw, "errors.txt", []byte(strings.Join(failures, "\n")+"\n")); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to archive: %w", name, err)
	}
	return nil
}
