package util

import (
	"math/rand"
	"strings"
)

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string,
// used for task ids and temp file naming.
func GenerateRandStringWithUpperLowerNum(n int) string {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(randCharset[rand.Intn(len(randCharset))])
	}
	return sb.String()
}

// SanitizePathName strips characters that break shell/ffmpeg path handling.
func SanitizePathName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "",
		"\"", "", "<", "", ">", "", "|", "", "=", "", " ", "_",
	)
	return replacer.Replace(name)
}
