package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-uploader/internal/receipt"
)

var _ = Describe("parseModelJSON", func() {
	var (
		input  string
		result *Result
		err    error
	)

	JustBeforeEach(func() {
		result, err = parseModelJSON(input)
	})

	When("parsing valid JSON", func() {
		BeforeEach(func() {
			input = `{"adSoyad": " Ayse Yilmaz ", "alici": "Mehmet Kaya", "islemNo": "TR123", "tarih": "2024-01-15", "tutar": "1.250,00 TL", "riskStatus": "Low Risk"}`
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should trim the values", func() {
			Expect(result.Info).To(HaveKeyWithValue("adSoyad", "Ayse Yilmaz"))
		})

		It("should move the risk status out of the info", func() {
			Expect(result.RiskStatus).To(Equal("Low Risk"))
			Expect(result.Info).NotTo(HaveKey("riskStatus"))
		})
	})

	When("parsing JSON wrapped in markdown and prose", func() {
		BeforeEach(func() {
			input = "```json\nHere you go: {\"islemNo\": \"T1\", \"tutar\": null}\n```"
		})

		It("should extract the object", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Info).To(Equal(receipt.ExtractedInfo{"islemNo": "T1"}))
		})
	})

	When("there is no JSON object", func() {
		BeforeEach(func() {
			input = "I cannot read this receipt"
		})

		It("returns the error", func() {
			Expect(err).To(MatchError(ContainSubstring("no JSON object")))
		})
	})

	When("the JSON is malformed", func() {
		BeforeEach(func() {
			input = `{"islemNo": }`
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})
