package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/overseaspath/crm-backend/internal/entity"
	"github.com/overseaspath/crm-backend/internal/infra/http/handlers"
)

type fakeLeadStore struct {
	created []*entity.Lead
	err     error
}

func (s *fakeLeadStore) Create(ctx context.Context, lead *entity.Lead) error {
	if s.err != nil {
		return s.err
	}
	lead.ID = len(s.created) + 1
	s.created = append(s.created, lead)
	return nil
}

func postCapture(t *testing.T, handler *handlers.CaptureHandler, body map[string]interface{}, ip string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/public/leads", bytes.NewReader(payload))
	req.Header.Set("X-Forwarded-For", ip)

	rec := httptest.NewRecorder()
	handler.CaptureLead(rec, req)
	return rec
}

func TestCaptureLeadCreatesUnassignedWebsiteLead(t *testing.T) {
	store := &fakeLeadStore{}
	handler := handlers.NewCaptureHandler(store)

	rec := postCapture(t, handler, map[string]interface{}{
		"name":           "Arjun Nair",
		"phone":          "+61412345678",
		"email":          "arjun@example.com",
		"target_country": "Australia",
	}, "203.0.113.7")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.created, 1)

	lead := store.created[0]
	assert.Equal(t, "Website", lead.Source)
	assert.Equal(t, entity.LeadStatusUnassigned, lead.Status)
	assert.Nil(t, lead.AssignedStaffID)
	assert.Equal(t, "arjun@example.com", lead.Email)
}

func TestCaptureLeadRejectsMissingPhone(t *testing.T) {
	store := &fakeLeadStore{}
	handler := handlers.NewCaptureHandler(store)

	rec := postCapture(t, handler, map[string]interface{}{"name": "No Phone"}, "203.0.113.7")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.created)
}

func TestCaptureLeadRateLimited(t *testing.T) {
	store := &fakeLeadStore{}
	handler := handlers.NewCaptureHandler(store)

	body := map[string]interface{}{"name": "Flood", "phone": "+61400000000"}

	for i := 0; i < 10; i++ {
		rec := postCapture(t, handler, body, "198.51.100.1")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postCapture(t, handler, body, "198.51.100.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different IP is unaffected.
	rec = postCapture(t, handler, body, "198.51.100.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}
