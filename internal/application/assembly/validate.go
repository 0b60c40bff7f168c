package assembly

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pharmadist-core/internal/application/dto"
	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// structError traduce el primer error del validador a ValidationError.
func structError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.NewValidation("", err.Error())
	}
	ve := ves[0]
	ns := ve.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	reason := fmt.Sprintf("%s: no cumple la regla %q", ns, ve.Tag())
	if ve.Param() != "" {
		reason = fmt.Sprintf("%s: no cumple la regla %q (%s)", ns, ve.Tag(), ve.Param())
	}
	if line := rowIndex(ns); line > 0 {
		return domain.NewLineValidation(line, ve.Field(), reason)
	}
	return domain.NewValidation(ve.Field(), reason)
}

// rowIndex fila 1-based de un namespace "rows[2].batch_no"; 0 si no es de fila.
func rowIndex(ns string) int {
	if !strings.HasPrefix(ns, "rows[") {
		return 0
	}
	end := strings.Index(ns, "]")
	if end < 0 {
		return 0
	}
	n, err := strconv.Atoi(ns[len("rows["):end])
	if err != nil {
		return 0
	}
	return n + 1
}

// validRow fila aceptada. LineNo es la posición tras descartar las vacías;
// SourceRow la posición original para los mensajes de error.
type validRow struct {
	LineNo    int
	SourceRow int
	Row       dto.DraftRow
	Expiry    *time.Time
}

type validDraft struct {
	Register entity.RegisterKind
	SubType  string
	DocDate  time.Time
	DocTime  string
	Rows     []validRow
	Factors  []entity.CostFactor
}

var subTypesByRegister = map[string]entity.RegisterKind{
	entity.SubTypeReturnDirect:  entity.RegisterSalesReturn,
	entity.SubTypeReturnAgainst: entity.RegisterSalesReturn,
	entity.SubTypeInvoiceCloned: entity.RegisterSalesInvoice,
}

// validateDraft Draft → Validated. Las filas totalmente vacías se descartan; una fila con
// material o cantidad no positivos rechaza el documento.
func (s *Service) validateDraft(in dto.DocumentDraft) (*validDraft, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, structError(err)
	}
	register, err := entity.ParseRegisterKind(in.Register)
	if err != nil {
		return nil, domain.NewValidation("register", err.Error())
	}
	if in.SubType != "" && subTypesByRegister[in.SubType] != register {
		return nil, domain.NewValidation("sub_type", fmt.Sprintf("el subtipo %s no aplica a %s", in.SubType, register))
	}
	docDate, err := time.Parse(dateLayout, in.DocDate)
	if err != nil {
		return nil, domain.NewValidation("doc_date", "fecha inválida")
	}
	if in.DocumentID != "" && in.ParentDocumentID == in.DocumentID {
		return nil, domain.NewValidation("parent_document_id", "un documento no puede ser su propio padre")
	}

	out := &validDraft{Register: register, SubType: in.SubType, DocDate: docDate, DocTime: in.DocTime}
	for i, r := range in.Rows {
		if r.IsBlank() {
			continue
		}
		src := i + 1
		if r.MaterialID <= 0 {
			return nil, domain.NewLineValidation(src, "material_id", "debe indicar un material válido")
		}
		if !r.Quantity.IsPositive() {
			return nil, domain.NewLineValidation(src, "quantity", "la cantidad debe ser mayor que cero")
		}
		if !fitsScale(r.Quantity, quantityScale) {
			return nil, domain.NewLineValidation(src, "quantity", fmt.Sprintf("la cantidad admite hasta %d decimales", quantityScale))
		}
		if r.Rate.IsNegative() {
			return nil, domain.NewLineValidation(src, "rate", "la tarifa no puede ser negativa")
		}
		if !fitsScale(r.Rate, rateScale) {
			return nil, domain.NewLineValidation(src, "rate", fmt.Sprintf("la tarifa admite hasta %d decimales", rateScale))
		}
		if !fitsScale(r.TradeRate, rateScale) || !fitsScale(r.MRP, rateScale) {
			return nil, domain.NewLineValidation(src, "mrp", fmt.Sprintf("PTR y MRP admiten hasta %d decimales", rateScale))
		}
		if r.Amount != nil && r.Amount.IsNegative() {
			return nil, domain.NewLineValidation(src, "amount", "el monto no puede ser negativo")
		}
		if r.PackQuantity != nil && (r.PackQuantity.IsNegative() || !fitsScale(*r.PackQuantity, quantityScale)) {
			return nil, domain.NewLineValidation(src, "pack_quantity", "las cajas no pueden ser negativas ni tener más de 3 decimales")
		}
		vr := validRow{LineNo: len(out.Rows) + 1, SourceRow: src, Row: r}
		if r.ExpiryDate != "" {
			exp, err := time.Parse(dateLayout, r.ExpiryDate)
			if err != nil {
				return nil, domain.NewLineValidation(src, "expiry_date", "fecha de vencimiento inválida")
			}
			vr.Expiry = &exp
		}
		out.Rows = append(out.Rows, vr)
	}
	if len(out.Rows) == 0 {
		return nil, domain.NewValidation("rows", "el documento no tiene líneas válidas")
	}
	if in.PartyID <= 0 && in.SupplierID <= 0 {
		return nil, domain.NewValidation("party_id", "debe seleccionar un cliente o proveedor")
	}
	out.Factors = costFactors(in.CostFactors)
	return out, nil
}

func costFactors(in []dto.CostFactorInput) []entity.CostFactor {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.CostFactor, 0, len(in))
	for _, f := range in {
		out = append(out, entity.CostFactor{Name: f.Name, Mode: f.Mode, Value: f.Value, Sign: f.Sign, Amount: decimal.Zero})
	}
	return out
}

// Escalas de las columnas NUMERIC de cantidades y tarifas.
const (
	quantityScale = 3
	rateScale     = 4
)

// fitsScale indica si v se guarda sin redondeo con la escala dada ("5.000000" cabe en 3).
func fitsScale(v decimal.Decimal, scale int32) bool {
	return v.Equal(v.Truncate(scale))
}
