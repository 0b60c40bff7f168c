package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pharmadist-core/internal/application/assembly"
	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/application/sequence"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/pharmadist-core/internal/interfaces/http"
	"github.com/jhoicas/pharmadist-core/pkg/logger"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	s := memory.New()
	s.AddState(entity.State{ID: 10, Code: "MH", Description: "Maharashtra", StateType: 0})
	s.AddParty(entity.Party{ID: 5, CompanyID: testCompanyID, Name: "Apollo Pharmacy", Address: "Pune", StateID: 10, Enabled: true})
	s.AddHSN(entity.HSN{ID: 1, Code: "3004", CGSTPct: decimal.NewFromInt(9), SGSTPct: decimal.NewFromInt(9), IGSTPct: decimal.NewFromInt(18)})
	s.AddMaterial(entity.Material{ID: 7, CompanyID: testCompanyID, Code: "PCM500", Description: "Paracetamol 500mg", HSNID: 1, LotTracked: true})

	alloc := sequence.NewAllocator(s, sequence.NoopLocker(), logger.Nop())
	svc := assembly.NewService(s, s, s.Registries(), alloc, assembly.Config{}, logger.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{Documents: svc, JWTSecret: testJWTSecret, Logger: logger.Nop()})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func salesInvoice() map[string]any {
	return map[string]any{
		"register": "SALES_INVOICE",
		"doc_date": "2025-06-10",
		"party_id": 5,
		"rows": []map[string]any{
			{"material_id": 7, "quantity": "5", "rate": "20", "batch_no": "B1"},
		},
	}
}

func TestDocumentHandler_CrearYConsultar(t *testing.T) {
	app := newApp(t)
	auth := tokenFor(t, testCompanyID, testUserID)

	resp := call(t, app, http.MethodPost, "/api/documents", auth, salesInvoice())
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created dto.AssembledDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.True(t, created.Created)
	assert.Equal(t, "25-26/A00001", created.Document.DocNo)
	assert.Equal(t, "ONE HUNDRED AND EIGHTEEN RUPEES ONLY", created.Document.AmountInWords)

	get := call(t, app, http.MethodGet, "/api/documents/"+created.Document.ID, auth, nil)
	defer get.Body.Close()
	require.Equal(t, http.StatusOK, get.StatusCode)
	var doc dto.DocumentResponse
	require.NoError(t, json.NewDecoder(get.Body).Decode(&doc))
	assert.True(t, doc.NetAmount.Equal(decimal.RequireFromString("118")))
	require.Len(t, doc.Lines, 1)
	require.NotNil(t, doc.Lines[0].Batch)
}

func TestDocumentHandler_EditarConservaNumero(t *testing.T) {
	app := newApp(t)
	auth := tokenFor(t, testCompanyID, testUserID)

	resp := call(t, app, http.MethodPost, "/api/documents", auth, salesInvoice())
	defer resp.Body.Close()
	var created dto.AssembledDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	body := salesInvoice()
	body["rows"] = []map[string]any{{"material_id": 7, "quantity": "10", "rate": "20", "batch_no": "B1"}}
	upd := call(t, app, http.MethodPut, "/api/documents/"+created.Document.ID, auth, body)
	defer upd.Body.Close()
	require.Equal(t, http.StatusOK, upd.StatusCode)

	var edited dto.AssembledDocument
	require.NoError(t, json.NewDecoder(upd.Body).Decode(&edited))
	assert.False(t, edited.Created)
	assert.Equal(t, created.Document.DocNo, edited.Document.DocNo)
	assert.True(t, edited.Document.NetAmount.Equal(decimal.RequireFromString("236")))
}

func TestDocumentHandler_ValidacionRetorna400ConFila(t *testing.T) {
	app := newApp(t)
	body := salesInvoice()
	body["rows"] = []map[string]any{
		{"material_id": 7, "quantity": "5", "rate": "20", "batch_no": "B1"},
		{"material_id": 7, "quantity": "0", "rate": "20", "batch_no": "B1"},
	}
	resp := call(t, app, http.MethodPost, "/api/documents", tokenFor(t, testCompanyID, testUserID), body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "quantity", e.Field)
	assert.Equal(t, 2, e.Line)
}

func TestDocumentHandler_CuerpoInvalido(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, testCompanyID, testUserID))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDocumentHandler_OtraEmpresaRetorna403(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, http.MethodPost, "/api/documents", tokenFor(t, testCompanyID, testUserID), salesInvoice())
	defer resp.Body.Close()
	var created dto.AssembledDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	get := call(t, app, http.MethodGet, "/api/documents/"+created.Document.ID, tokenFor(t, 2, 3), nil)
	defer get.Body.Close()
	assert.Equal(t, http.StatusForbidden, get.StatusCode)
}

func TestDocumentHandler_Inexistente404(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, http.MethodGet, "/api/documents/00000000-0000-0000-0000-000000000000", tokenFor(t, testCompanyID, testUserID), nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentHandler_Deshabilitar(t *testing.T) {
	app := newApp(t)
	auth := tokenFor(t, testCompanyID, testUserID)
	resp := call(t, app, http.MethodPost, "/api/documents", auth, salesInvoice())
	defer resp.Body.Close()
	var created dto.AssembledDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	patch := call(t, app, http.MethodPatch, "/api/documents/"+created.Document.ID+"/enabled", auth, map[string]any{"enabled": false})
	defer patch.Body.Close()
	require.Equal(t, http.StatusOK, patch.StatusCode)
	var doc dto.DocumentResponse
	require.NoError(t, json.NewDecoder(patch.Body).Decode(&doc))
	assert.False(t, doc.Enabled)

	missing := call(t, app, http.MethodPatch, "/api/documents/"+created.Document.ID+"/enabled", auth, map[string]any{})
	defer missing.Body.Close()
	assert.Equal(t, http.StatusBadRequest, missing.StatusCode)
}

func TestDocumentHandler_VistaPrevia(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, http.MethodPost, "/api/tax-preview", tokenFor(t, testCompanyID, testUserID), map[string]any{
		"regime": "INTER",
		"rows":   []map[string]any{{"material_id": 7, "quantity": "1", "rate": "250.50"}},
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p dto.TaxPreview
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.True(t, p.IGSTAmount.Equal(decimal.RequireFromString("45.09")))
	assert.True(t, p.NetAmount.Equal(decimal.RequireFromString("295.59")))
}

func TestDocumentHandler_SinTokenRetorna401(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, http.MethodPost, "/api/documents", "", salesInvoice())
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := newApp(t)
	resp := call(t, app, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
