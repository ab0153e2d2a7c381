package receipt

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ClassifyRisk", func() {
	DescribeTable("classifying status strings",
		func(status string, level RiskLevel, kind BadgeKind) {
			rs := ClassifyRisk(status)
			Expect(rs.Level).To(Equal(level))
			Expect(rs.Kind).To(Equal(kind))
			Expect(rs.Raw).To(Equal(status))
		},
		Entry("high risk", "high risk", RiskHigh, BadgeError),
		Entry("upper case high risk", "HIGH RISK", RiskHigh, BadgeError),
		Entry("medium risk", "Medium Risk", RiskMedium, BadgeWarning),
		Entry("low risk with whitespace", "  low risk ", RiskLow, BadgeSuccess),
		Entry("unrecognized", "suspicious", RiskUnknown, BadgeWarning),
		Entry("empty", "", RiskUnknown, BadgeWarning),
	)

	It("should label unknown statuses with the raw text", func() {
		Expect(ClassifyRisk("pending review").Label()).To(Equal("pending review"))
		Expect(ClassifyRisk("").Label()).To(Equal("Unknown"))
		Expect(ClassifyRisk("high risk").Label()).To(Equal("High Risk"))
	})
})
