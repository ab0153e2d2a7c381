package intake

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

var _ = Describe("Normalize", func() {
	It("should leave JPEG and PNG files unchanged", func() {
		f := NewPendingFile(SourceBrowse, "receipt.jpg", "image/jpeg", []byte("jpeg data"))
		out, err := Normalize(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(f))
	})

	It("should reject undecodable HEIC data with a validation error", func() {
		f := NewPendingFile(SourceBrowse, "photo.heic", "image/heic", []byte("not really heic"))
		_, err := Normalize(f)
		Expect(err).To(BeAssignableToTypeOf(&receipt.ValidationError{}))
		Expect(err.Error()).To(ContainSubstring("photo.heic"))
	})

	It("should reject undecodable PDF data with a validation error", func() {
		f := NewPendingFile(SourceBrowse, "scan.pdf", "application/pdf", []byte("%PDF-garbage"))
		_, err := Normalize(f)
		Expect(err).To(BeAssignableToTypeOf(&receipt.ValidationError{}))
	})

	It("should detect HEIC by its ftyp brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00"))).To(BeTrue())
		Expect(isHEICFormat([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x00"))).To(BeFalse())
		Expect(isHEICFormat([]byte("short"))).To(BeFalse())
	})

	It("should ignore the part header when the extension is a plain image", func() {
		f := NewPendingFile(SourceBrowse, "receipt.png", "application/pdf", []byte("png data"))
		out, err := Normalize(f)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(f))
	})

	DescribeTable("converted file names",
		func(name, expected string) {
			Expect(pngName(name)).To(Equal(expected))
		},
		Entry("lower case", "scan.pdf", "scan.png"),
		Entry("upper case extension", "SCAN.PDF", "SCAN.png"),
		Entry("heif", "IMG_0001.HEIF", "IMG_0001.png"),
		Entry("dotted base name", "receipt.2024.heic", "receipt.2024.png"),
	)
})
