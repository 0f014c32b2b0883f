package handlers_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pujcovna/internal/clients"
	"pujcovna/internal/domain"
	"pujcovna/internal/http/handlers"
)

type stubLabels struct{ calls int }

func (s *stubLabels) CreateLabel(_ context.Context, req clients.LabelRequest) (clients.Label, error) {
	s.calls++
	return clients.Label{TrackingNumber: "TRK-" + req.Reference[:4], LabelURL: "https://labels.example/x.pdf"}, nil
}

type downInvoicer struct{}

func (downInvoicer) CreateInvoice(context.Context, clients.InvoiceRequest) (clients.Invoice, error) {
	return clients.Invoice{}, &clients.APIError{Service: "invoicing", Status: 503, Body: "maintenance"}
}

func reservationBody(start, end string, cameras ...string) map[string]any {
	items := []map[string]any{}
	for _, c := range cameras {
		items = append(items, map[string]any{"kind": "camera", "item_id": c, "quantity": 1})
	}
	return map[string]any{
		"customer_name":  "Jana Novakova",
		"customer_email": "jana@example.com",
		"start_date":     start,
		"end_date":       end,
		"items":          items,
	}
}

func TestReservations_CreateConflictAndAvailability(t *testing.T) {
	logs := captureLogs(t)
	a := newTestApp(t, handlers.Integrations{})
	tok := a.login(t, "staff@pujcovna.test")

	resp := a.do(t, "POST", "/api/v1/reservations", tok, reservationBody("2025-06-10", "2025-06-12", "olympus-mju-ii"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res domain.Reservation
	decode(t, resp, &res)
	assert.Equal(t, int64(60000), res.TotalPrice)
	assert.Equal(t, domain.StatusNew, res.Status)

	l, ok := findLog(logs, "reservation.save")
	require.True(t, ok)
	assert.Equal(t, res.ID, l.Fields["reservation_id"])
	assert.Equal(t, http.StatusCreated, l.Status, "audit line carries the response status")

	// touching the last day of an existing booking conflicts
	resp = a.do(t, "POST", "/api/v1/reservations", tok, reservationBody("2025-06-12", "2025-06-13", "olympus-mju-ii"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, "GET", "/api/v1/availability?from=2025-06-11&to=2025-06-11", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var avail struct {
		Cameras []struct {
			ID    string `json:"id"`
			Days  int    `json:"days"`
			Price int64  `json:"price_for_range"`
		} `json:"cameras"`
	}
	decode(t, resp, &avail)
	require.Len(t, avail.Cameras, 1)
	assert.Equal(t, "canon-ae1", avail.Cameras[0].ID)
	assert.Equal(t, int64(30000), avail.Cameras[0].Price)

	resp = a.do(t, "GET", "/api/v1/availability?from=2025-06-11&to=2025-06-11&exclude="+res.ID, tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &avail)
	assert.Len(t, avail.Cameras, 2)
}

func TestReservations_StatusFlowAndContract(t *testing.T) {
	a := newTestApp(t, handlers.Integrations{})
	tok := a.login(t, "staff@pujcovna.test")

	resp := a.do(t, "POST", "/api/v1/reservations", tok, reservationBody("2025-06-10", "2025-06-12", "canon-ae1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res domain.Reservation
	decode(t, resp, &res)

	resp = a.do(t, "PATCH", "/api/v1/reservations/"+res.ID+"/status", tok, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &res)
	assert.Equal(t, domain.StatusConfirmed, res.Status)

	resp = a.do(t, "PATCH", "/api/v1/reservations/"+res.ID+"/status", tok, map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = a.do(t, "GET", "/api/v1/reservations/"+res.ID+"/contract.pdf", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "contract-"+res.ID+".pdf")
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	resp = a.do(t, "GET", "/api/v1/reservations?status=confirmed", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []domain.Reservation
	decode(t, resp, &list)
	require.Len(t, list, 1)

	resp = a.do(t, "GET", "/api/v1/reservations/nope", tok, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReservations_Quote(t *testing.T) {
	a := newTestApp(t, handlers.Integrations{})
	tok := a.login(t, "staff@pujcovna.test")

	resp := a.do(t, "POST", "/api/v1/reservations/quote", tok, reservationBody("2025-06-10", "2025-06-16", "olympus-mju-ii", "canon-ae1"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q struct {
		Days        int      `json:"days"`
		TotalPrice  int64    `json:"total_price"`
		Unavailable []string `json:"unavailable_camera_ids"`
	}
	decode(t, resp, &q)
	assert.Equal(t, 7, q.Days)
	assert.Equal(t, int64(7*15000+7*22000), q.TotalPrice)
	assert.Empty(t, q.Unavailable)
}

func TestReservations_Integrations(t *testing.T) {
	logs := captureLogs(t)
	labels := &stubLabels{}
	a := newTestApp(t, handlers.Integrations{Labels: labels, Invoicer: downInvoicer{}})
	tok := a.login(t, "staff@pujcovna.test")

	body := reservationBody("2025-06-10", "2025-06-12", "canon-ae1")
	body["delivery_method"] = "shipping"
	body["street"] = "Veveri 12"
	body["city"] = "Brno"
	body["zip"] = "602 00"
	resp := a.do(t, "POST", "/api/v1/reservations", tok, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res domain.Reservation
	decode(t, resp, &res)
	assert.Equal(t, "60200", res.Zip)

	resp = a.do(t, "POST", "/api/v1/reservations/"+res.ID+"/shipping-label", tok, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decode(t, resp, &res)
	assert.NotEmpty(t, res.TrackingNumber)
	l, ok := findLog(logs, "reservation.label")
	require.True(t, ok)
	assert.Equal(t, http.StatusCreated, l.Status)

	resp = a.do(t, "POST", "/api/v1/reservations/"+res.ID+"/shipping-label", tok, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, 1, labels.calls)

	resp = a.do(t, "PATCH", "/api/v1/reservations/"+res.ID+"/status", tok, map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = a.do(t, "POST", "/api/v1/reservations/"+res.ID+"/invoice", tok, nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestReservations_UnconfiguredIntegration(t *testing.T) {
	a := newTestApp(t, handlers.Integrations{})
	tok := a.login(t, "staff@pujcovna.test")

	resp := a.do(t, "POST", "/api/v1/reservations", tok, reservationBody("2025-06-10", "2025-06-12", "canon-ae1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var res domain.Reservation
	decode(t, resp, &res)

	resp = a.do(t, "POST", "/api/v1/reservations/"+res.ID+"/invoice", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	a := newTestApp(t, handlers.Integrations{})
	tok := a.login(t, "staff@pujcovna.test")

	resp := a.do(t, "GET", "/api/v1/dashboard", tok, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d map[string]any
	decode(t, resp, &d)
	assert.Contains(t, d, "status_counts")
	assert.Contains(t, d, "upcoming_dispatch")
}
