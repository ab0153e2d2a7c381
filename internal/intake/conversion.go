package intake

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

// Normalize converts HEIC/HEIF photos and PDFs to PNG so the extraction API
// always receives a plain image. The conversion is chosen by file extension, or
// by the HEIC ftyp brand for phone photos saved as .jpg. Other files are returned
// unchanged whatever their part header claims.
func Normalize(f PendingFile) (PendingFile, error) {
	var (
		data []byte
		err  error
	)
	switch ext := f.Ext(); {
	case ext == ".pdf":
		data, err = pdfToImage(f.Data)
	case ext == ".heic" || ext == ".heif" || isHEICFormat(f.Data):
		data, err = heicToPNG(f.Data)
	default:
		return f, nil
	}
	if err != nil {
		return f, &receipt.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("Could not read %s. Please upload a JPG or PNG image.", f.Name),
		}
	}

	f.Name = pngName(f.Name)
	f.ContentType = "image/png"
	f.Data = data
	f.Size = int64(len(data))
	return f, nil
}

// pngName swaps the extension of name for .png, keeping the base name's case
func pngName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".png"
}

// pdfToImage renders the first page of a PDF to PNG
func pdfToImage(pdfData []byte) ([]byte, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	// Receipts are single page
	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return encodePNG(img)
}

// heicToPNG decodes an iPhone HEIC/HEIF photo and re-encodes it as PNG
func heicToPNG(data []byte) ([]byte, error) {
	img, err := heic.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}
