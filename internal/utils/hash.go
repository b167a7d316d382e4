package utils

import (
	"crypto/md5"
	"encoding/hex"
)

// CalculateDataMD5 returns the hex MD5 digest of data, used for ETags and
// content-addressed file names.
func CalculateDataMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
