package generation

import "encoding/base64"

// encodeImage prepares raw PNG bytes for embedding into an HTML template
// as a data URI.
func encodeImage(img []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(img)
}
