package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startupResp struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	TotalFunding string `json:"total_funding"`
}

type reportResp struct {
	Summary struct {
		TotalRevenue   string `json:"total_revenue"`
		TotalExpenses  string `json:"total_expenses"`
		TotalFunding   string `json:"total_funding"`
		AvailableFunds string `json:"available_funds"`
	} `json:"summary"`
}

func TestFinancialsFlow(t *testing.T) {
	requireServer(t)

	var st startupResp
	resp := doJSON(t, http.MethodPost, "/startups", map[string]interface{}{
		"name":          fmt.Sprintf("Integration %d", time.Now().UnixNano()),
		"registered_at": "2024-01-01",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeBody(t, resp, &st)
	require.NotZero(t, st.ID)
	sid := fmt.Sprint(st.ID)

	var investmentID string
	t.Run("Add investment", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, "/investments/"+sid, map[string]interface{}{
			"date":             "2024-02-01",
			"investor_type":    "VC",
			"investment_type":  "Equity",
			"investor_name":    "Seed Fund",
			"amount":           "100000",
			"equity_allocated": "10",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var inv struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &inv)
		investmentID = inv.ID
	})

	t.Run("Add ledger records", func(t *testing.T) {
		for _, body := range []map[string]interface{}{
			{"record_type": "revenue", "date": "2024-03-01", "entity": "Parent Company", "vertical": "Services", "description": "pilot", "amount": "20000"},
			{"record_type": "expense", "date": "2024-03-05", "entity": "Parent Company", "vertical": "Rent", "description": "office", "amount": "5000"},
		} {
			resp := doJSON(t, http.MethodPost, "/ledger/"+sid, body)
			resp.Body.Close()
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}
	})

	t.Run("Report", func(t *testing.T) {
		var report reportResp
		resp := doJSON(t, http.MethodGet, "/financials/"+sid+"?year=2024", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &report)
		assert.Equal(t, "20000", report.Summary.TotalRevenue)
		assert.Equal(t, "115000", report.Summary.AvailableFunds)
	})

	t.Run("Recalculate is idempotent", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			var out struct {
				TotalFunding string      `json:"total_funding"`
				Drift        interface{} `json:"drift"`
			}
			resp := doJSON(t, http.MethodPost, "/investments/"+sid+"/recalculate", nil)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			decodeBody(t, resp, &out)
			assert.Equal(t, "100000", out.TotalFunding)
			assert.Nil(t, out.Drift)
		}
	})

	t.Run("Delete investment", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, "/investments/record/"+investmentID, nil)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var got startupResp
		resp = doJSON(t, http.MethodGet, "/startups/"+sid, nil)
		decodeBody(t, resp, &got)
		assert.Equal(t, "0", got.TotalFunding)
	})
}
