package web

import (
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-uploader/internal/intake"
	"github.com/zombor/receipt-uploader/internal/workflow"
)

var _ = Describe("Sessions", func() {
	var (
		sessions *Sessions
		now      time.Time
	)

	newSession := func() *http.Cookie {
		rec := httptest.NewRecorder()
		sessions.Controller(rec, httptest.NewRequest("GET", "/", nil))
		cookies := rec.Result().Cookies()
		Expect(cookies).To(HaveLen(1))
		return cookies[0]
	}

	requestWith := func(cookie *http.Cookie) *http.Request {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(cookie)
		return req
	}

	BeforeEach(func() {
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		sessions = NewSessionsWithLimits(func() *workflow.Controller {
			return workflow.New(nil, nil, intake.NewValidator(nil, 0))
		}, 10*time.Minute, 3)
		sessions.now = func() time.Time { return now }
	})

	It("should return the same controller for a known cookie", func() {
		cookie := newSession()
		first, ok := sessions.Lookup(requestWith(cookie))
		Expect(ok).To(BeTrue())
		second := sessions.Controller(httptest.NewRecorder(), requestWith(cookie))
		Expect(second).To(BeIdenticalTo(first))
		Expect(sessions.Len()).To(Equal(1))
	})

	It("should not start a session on lookup", func() {
		_, ok := sessions.Lookup(httptest.NewRequest("GET", "/", nil))
		Expect(ok).To(BeFalse())
		Expect(sessions.Len()).To(BeZero())
	})

	It("should expire idle sessions", func() {
		cookie := newSession()
		now = now.Add(11 * time.Minute)
		_, ok := sessions.Lookup(requestWith(cookie))
		Expect(ok).To(BeFalse())
		Expect(sessions.Len()).To(BeZero())
	})

	It("should keep sessions that stay active", func() {
		cookie := newSession()
		for i := 0; i < 3; i++ {
			now = now.Add(8 * time.Minute)
			_, ok := sessions.Lookup(requestWith(cookie))
			Expect(ok).To(BeTrue())
		}
	})

	It("should sweep expired sessions when a new one starts", func() {
		newSession()
		newSession()
		now = now.Add(11 * time.Minute)
		newSession()
		Expect(sessions.Len()).To(Equal(1))
	})

	It("should evict the least recently seen session when full", func() {
		oldest := newSession()
		now = now.Add(time.Minute)
		kept := newSession()
		now = now.Add(time.Minute)
		newSession()
		now = now.Add(time.Minute)
		newSession()

		Expect(sessions.Len()).To(Equal(3))
		_, ok := sessions.Lookup(requestWith(oldest))
		Expect(ok).To(BeFalse())
		_, ok = sessions.Lookup(requestWith(kept))
		Expect(ok).To(BeTrue())
	})
})
