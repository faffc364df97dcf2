package terms_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/shiftboard/internal/app/features/terms"
	"go.uber.org/zap"
)

func TestServeTermsAndPrivacy_ReachRender(t *testing.T) {
	h := terms.NewHandler(zap.NewNop())

	for _, serve := range []func(){
		func() { h.ServeTerms(httptest.NewRecorder(), httptest.NewRequest("GET", "/terms", nil)) },
		func() {
			terms.PrivacyHandler(h).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/privacy", nil))
		},
	} {
		func() {
			defer func() { _ = recover() }()
			serve()
		}()
	}
}
