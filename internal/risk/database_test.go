package risk

import (
	"errors"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BoltDB", func() {
	var (
		tmpDir string
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		dbPath = filepath.Join(tmpDir, "test.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Describe("SaveReport", func() {
		var (
			report *Report
			err    error
		)

		BeforeEach(func() {
			report = &Report{
				ID:        "report-1",
				ReceiptID: "T1",
				Type:      TypeFraud,
				Comment:   "Amount was edited",
				CreatedAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
			}
		})

		JustBeforeEach(func() {
			err = db.SaveReport(report)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should save the report to the database", func() {
				saved, getErr := db.GetReport("report-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ReceiptID).To(Equal("T1"))
				Expect(saved.Type).To(Equal(TypeFraud))
				Expect(saved.Comment).To(Equal("Amount was edited"))
				Expect(saved.CreatedAt.Equal(report.CreatedAt)).To(BeTrue())
			})
		})

		When("the database is reopened", func() {
			It("should keep the report", func() {
				Expect(db.Close()).To(Succeed())
				var openErr error
				db, openErr = NewBoltDB(dbPath)
				Expect(openErr).NotTo(HaveOccurred())
				saved, getErr := db.GetReport("report-1")
				Expect(getErr).NotTo(HaveOccurred())
				Expect(saved.ID).To(Equal("report-1"))
			})
		})
	})

	Describe("GetReport", func() {
		When("report does not exist", func() {
			It("returns the error", func() {
				_, err := db.GetReport("nonexistent")
				Expect(err).To(MatchError(errors.New("report not found: nonexistent")))
			})
		})
	})

	Describe("ListReports", func() {
		var (
			reports []*Report
			err     error
		)

		JustBeforeEach(func() {
			reports, err = db.ListReports()
		})

		When("reports exist", func() {
			BeforeEach(func() {
				base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
				Expect(db.SaveReport(&Report{ID: "b", ReceiptID: "T2", Type: TypeOther, Comment: "x", CreatedAt: base.Add(time.Hour)})).To(Succeed())
				Expect(db.SaveReport(&Report{ID: "a", ReceiptID: "T1", Type: TypeFraud, Comment: "y", CreatedAt: base.Add(2 * time.Hour)})).To(Succeed())
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return all reports oldest first", func() {
				Expect(reports).To(HaveLen(2))
				Expect(reports[0].ID).To(Equal("b"))
				Expect(reports[1].ID).To(Equal("a"))
			})
		})

		When("no reports exist", func() {
			It("should return an empty list", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(reports).To(BeEmpty())
			})
		})
	})

	Describe("NewBoltDB", func() {
		When("the path is not writable", func() {
			It("returns the error", func() {
				_, err := NewBoltDB(filepath.Join(tmpDir, "missing", "dir", "test.db"))
				Expect(err).To(MatchError(ContainSubstring("opening boltdb")))
			})
		})
	})
})
