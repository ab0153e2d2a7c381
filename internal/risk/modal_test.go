package risk

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Modal", func() {
	var modal *Modal

	BeforeEach(func() {
		modal = NewModal()
	})

	It("should start closed", func() {
		Expect(modal.State()).To(Equal(ModalClosed))
		Expect(modal.CanSubmit()).To(BeFalse())
	})

	It("should refuse edits while closed", func() {
		Expect(modal.Update(TypeFraud, "x")).To(MatchError(ErrModalNotOpen))
		_, err := modal.Begin()
		Expect(err).To(MatchError(ErrModalNotOpen))
	})

	When("opened for a receipt", func() {
		BeforeEach(func() {
			Expect(modal.Open("T1")).To(Succeed())
		})

		It("should carry the receipt id", func() {
			Expect(modal.Snapshot().ReceiptID).To(Equal("T1"))
			Expect(modal.State()).To(Equal(ModalOpen))
		})

		DescribeTable("enabling submit",
			func(riskType Type, comment string, enabled bool) {
				Expect(modal.Update(riskType, comment)).To(Succeed())
				Expect(modal.CanSubmit()).To(Equal(enabled))
			},
			Entry("both present", TypeFraud, "edited amount", true),
			Entry("no type", Type(""), "edited amount", false),
			Entry("no comment", TypeOther, "", false),
			Entry("blank comment", TypeOther, "  \n", false),
			Entry("unknown type", Type("spam"), "edited amount", false),
		)

		When("the draft is complete", func() {
			var report Report

			BeforeEach(func() {
				Expect(modal.Update(TypeSuspicious, " odd timestamp ")).To(Succeed())
				var err error
				report, err = modal.Begin()
				Expect(err).NotTo(HaveOccurred())
			})

			It("should produce the report", func() {
				Expect(report).To(Equal(Report{ReceiptID: "T1", Type: TypeSuspicious, Comment: "odd timestamp"}))
			})

			It("should be submitting and disabled", func() {
				Expect(modal.State()).To(Equal(ModalSubmitting))
				Expect(modal.CanSubmit()).To(BeFalse())
			})

			It("should refuse a second submission", func() {
				_, err := modal.Begin()
				Expect(err).To(MatchError(ErrSubmitting))
			})

			It("should refuse cancel and edits", func() {
				Expect(modal.Cancel()).To(MatchError(ErrSubmitting))
				Expect(modal.Update(TypeFraud, "x")).To(MatchError(ErrSubmitting))
				Expect(modal.Open("T2")).To(MatchError(ErrSubmitting))
			})

			It("should close and clear on success", func() {
				modal.Finish(nil)
				Expect(modal.Snapshot()).To(Equal(ModalSnapshot{State: ModalClosed}))
			})

			It("should reopen with the draft on failure", func() {
				modal.Finish(errors.New("network down"))
				snap := modal.Snapshot()
				Expect(snap.State).To(Equal(ModalOpen))
				Expect(snap.RiskType).To(Equal(TypeSuspicious))
				Expect(snap.CanSubmit).To(BeTrue())
			})
		})

		It("should refuse to begin an incomplete draft", func() {
			_, err := modal.Begin()
			Expect(err).To(HaveOccurred())
			Expect(modal.State()).To(Equal(ModalOpen))
		})

		It("should show the validation error until the draft changes", func() {
			Expect(modal.Update(TypeFraud, "   ")).To(Succeed())
			_, err := modal.Begin()
			Expect(err).To(MatchError("Please describe the risk."))
			Expect(modal.Snapshot().Error).To(Equal("Please describe the risk."))

			Expect(modal.Update(TypeFraud, "Edited amount")).To(Succeed())
			Expect(modal.Snapshot().Error).To(BeEmpty())
		})

		It("should close on cancel", func() {
			Expect(modal.Cancel()).To(Succeed())
			Expect(modal.State()).To(Equal(ModalClosed))
		})
	})
})
