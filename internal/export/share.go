package export

import (
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// qrCodeSize はQRコード画像の1辺のピクセル数。
const qrCodeSize = 240

// ShareURL はイベントの共有リンクを組み立てる。
// ベースURL末尾のスラッシュの有無に依存しない。
func ShareURL(baseURL, eventID string) string {
	return strings.TrimRight(baseURL, "/") + "/events/" + eventID
}

// QRCodeDataURI は共有リンクのQRコードPNGをdata URIとして返す。
// HTMLのimg srcにそのまま埋め込める形式。
func QRCodeDataURI(shareURL string) (string, error) {
	png, err := qrcode.Encode(shareURL, qrcode.Medium, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
