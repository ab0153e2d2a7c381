package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/receipt"
)

var _ = Describe("Ollama", func() {
	var (
		server    *ghttp.Server
		extractor *Ollama
		file      intake.PendingFile
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		extractor = NewOllama(server.URL(), "llava")
		file = intake.NewPendingFile(intake.SourceBrowse, "receipt.jpg", "image/jpeg", []byte("jpeg"))
	})

	AfterEach(func() {
		server.Close()
	})

	When("the model replies with JSON", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest(http.MethodPost, "/api/chat"),
				func(w http.ResponseWriter, r *http.Request) {
					defer GinkgoRecover()
					body, _ := io.ReadAll(r.Body)
					var req ollamaChatRequest
					Expect(json.Unmarshal(body, &req)).To(Succeed())
					Expect(req.Model).To(Equal("llava"))
					Expect(req.Messages).To(HaveLen(2))
					Expect(req.Messages[1].Images).To(HaveLen(1))
					Expect(req.Messages[1].Content).To(ContainSubstring("Bank C"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
					Message: ollamaMessage{Role: "assistant", Content: `{"islemNo": "T1", "riskStatus": "Medium Risk"}`},
					Done:    true,
				}),
			))
		})

		It("should return the parsed result", func() {
			result, err := extractor.Extract(context.Background(), file, receipt.BankC)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Info).To(HaveKeyWithValue("islemNo", "T1"))
			Expect(result.RiskStatus).To(Equal("Medium Risk"))
		})
	})

	When("the model replies with prose", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWithJSONEncoded(http.StatusOK, ollamaChatResponse{
				Message: ollamaMessage{Role: "assistant", Content: "sorry"},
			}))
		})

		It("returns an application error", func() {
			_, err := extractor.Extract(context.Background(), file, receipt.BankC)
			var appErr *ApplicationError
			Expect(errors.As(err, &appErr)).To(BeTrue())
		})
	})

	When("ollama fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "model not loaded"))
		})

		It("returns a classified transport error", func() {
			_, err := extractor.Extract(context.Background(), file, receipt.BankC)
			Expect(err).To(MatchError(MessageServerError))
		})
	})
})
