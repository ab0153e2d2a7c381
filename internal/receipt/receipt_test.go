package receipt

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Bank", func() {
	It("should parse supported banks", func() {
		b, err := ParseBank(" Bank B ")
		Expect(err).NotTo(HaveOccurred())
		Expect(b).To(Equal(BankB))
		Expect(b.DocType()).To(Equal("bank_b"))
	})

	It("should reject unknown banks with a validation error", func() {
		_, err := ParseBank("Bank Z")
		var verr *ValidationError
		Expect(errors.As(err, &verr)).To(BeTrue())
		Expect(verr.Field).To(Equal("bank"))
	})

	It("should reject the empty bank", func() {
		Expect(Bank("").Valid()).To(BeFalse())
	})
})

var _ = Describe("ExtractedInfo", func() {
	var (
		input string
		info  ExtractedInfo
		err   error
	)

	JustBeforeEach(func() {
		info = nil
		err = json.Unmarshal([]byte(input), &info)
	})

	When("values are mixed types", func() {
		BeforeEach(func() {
			input = `{"adSoyad": "A", "tutar": 10.50, "islemNo": null, "onay": true}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should keep strings and number literals", func() {
			Expect(info).To(HaveKeyWithValue("adSoyad", "A"))
			Expect(info).To(HaveKeyWithValue("tutar", "10.50"))
			Expect(info).To(HaveKeyWithValue("onay", "true"))
		})

		It("should drop null values", func() {
			Expect(info).NotTo(HaveKey("islemNo"))
		})
	})

	When("a value is nested", func() {
		BeforeEach(func() {
			input = `{"adSoyad": {"first": "A"}}`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
