package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/pharmadist-core/internal/domain"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentsPKey = "documents_pkey"

const documentColumns = `
	id, company_id, register, sub_type, seq_no, doc_no, fiscal_year, doc_date, doc_time,
	party_id, party_name, supplier_id, reference_no, tax_regime, parent_document_id,
	gross_amount, cgst_amount, sgst_amount, igst_amount, cost_factor_total, net_amount,
	amount_in_words, cost_factors, enabled, created_by, modified_by, processed_at,
	created_at, updated_at`

const lineColumns = `
	id, document_id, line_no, material_id, material_ref_no, material_ref_name, hsn_id,
	quantity, rate, gross_amount, cgst_amount, sgst_amount, igst_amount, net_amount,
	source_line_id`

const batchColumns = `
	b.id, b.line_item_id, b.material_id, b.hsn_id, b.batch_number, b.expiry_date, b.packing_id,
	b.pack_quantity, b.total_quantity, b.rate, b.trade_rate, b.mrp,
	b.gross_amount, b.cgst_amount, b.sgst_amount, b.igst_amount, b.net_amount,
	b.source_batch_id, b.source_line_id, b.source_material_id`

// DocumentRepo maestro, detalle y lotes (usable con pool o tx).
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// Create persiste el maestro. Un doc_no repetido en (empresa, registro) es ErrNumberingConflict.
func (r *DocumentRepo) Create(ctx context.Context, doc *entity.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	factors, err := costFactorsJSON(doc.CostFactors)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)`
	_, err = r.q.Exec(ctx, query,
		doc.ID, doc.CompanyID, int(doc.Register), doc.SubType, doc.SeqNo, doc.DocNo, doc.FiscalYear,
		doc.DocDate, doc.DocTime,
		nullIfZero(doc.PartyID), doc.PartyName, nullIfZero(doc.SupplierID), doc.ReferenceNo,
		int(doc.TaxRegime), nullIfEmpty(doc.ParentDocumentID),
		doc.GrossAmount, doc.CGSTAmount, doc.SGSTAmount, doc.IGSTAmount, doc.CostFactorTotal, doc.NetAmount,
		doc.AmountInWords, factors, doc.Enabled, doc.CreatedBy, doc.ModifiedBy, doc.ProcessedAt,
		doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			if constraintOf(err) == documentsPKey {
				return fmt.Errorf("insert document %s: %w", doc.ID, domain.ErrConflict)
			}
			return fmt.Errorf("insert document %s: %w", doc.DocNo, domain.ErrNumberingConflict)
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// Update reescribe la cabecera. Número, ejercicio y auditoría de creación no se tocan.
func (r *DocumentRepo) Update(ctx context.Context, doc *entity.Document) error {
	factors, err := costFactorsJSON(doc.CostFactors)
	if err != nil {
		return err
	}
	query := `
		UPDATE documents
		SET sub_type           = $2,
		    doc_date           = $3,
		    doc_time           = $4,
		    party_id           = $5,
		    party_name         = $6,
		    supplier_id        = $7,
		    reference_no       = $8,
		    tax_regime         = $9,
		    parent_document_id = $10,
		    gross_amount       = $11,
		    cgst_amount        = $12,
		    sgst_amount        = $13,
		    igst_amount        = $14,
		    cost_factor_total  = $15,
		    net_amount         = $16,
		    amount_in_words    = $17,
		    cost_factors       = $18,
		    modified_by        = $19,
		    processed_at       = $20,
		    updated_at         = $21
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		doc.ID, doc.SubType, doc.DocDate, doc.DocTime,
		nullIfZero(doc.PartyID), doc.PartyName, nullIfZero(doc.SupplierID), doc.ReferenceNo,
		int(doc.TaxRegime), nullIfEmpty(doc.ParentDocumentID),
		doc.GrossAmount, doc.CGSTAmount, doc.SGSTAmount, doc.IGSTAmount, doc.CostFactorTotal, doc.NetAmount,
		doc.AmountInWords, factors, doc.ModifiedBy, doc.ProcessedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update document %s: %w", doc.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepo) SetEnabled(ctx context.Context, id string, enabled bool, modifiedBy int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE documents SET enabled = $2, modified_by = $3, updated_at = $4 WHERE id = $1`,
		id, enabled, modifiedBy, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("set document enabled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set document enabled %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *DocumentRepo) CreateLine(ctx context.Context, line *entity.LineItem) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	query := `
		INSERT INTO document_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		line.ID, line.DocumentID, line.LineNo, line.MaterialID, line.MaterialRefNo, line.MaterialRefName,
		nullIfZero(line.HSNID), line.Quantity, line.Rate,
		line.GrossAmount, line.CGSTAmount, line.SGSTAmount, line.IGSTAmount, line.NetAmount,
		nullIfEmpty(line.SourceLineID),
	)
	if err != nil {
		return fmt.Errorf("insert document line: %w", err)
	}
	return nil
}

// CreateBatch persiste el lote. Una línea admite a lo sumo un lote.
func (r *DocumentRepo) CreateBatch(ctx context.Context, b *entity.BatchLot) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	query := `
		INSERT INTO batch_lots (
			id, line_item_id, material_id, hsn_id, batch_number, expiry_date, packing_id,
			pack_quantity, total_quantity, rate, trade_rate, mrp,
			gross_amount, cgst_amount, sgst_amount, igst_amount, net_amount,
			source_batch_id, source_line_id, source_material_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.LineItemID, b.MaterialID, nullIfZero(b.HSNID), b.BatchNumber, b.ExpiryDate, nullIfZero(b.PackingID),
		b.PackQuantity, b.TotalQuantity, b.Rate, b.TradeRate, b.MRP,
		b.GrossAmount, b.CGSTAmount, b.SGSTAmount, b.IGSTAmount, b.NetAmount,
		nullIfEmpty(b.SourceBatchID), nullIfEmpty(b.SourceLineID), nullIfZero(b.SourceMaterialID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert batch lot for line %s: %w", b.LineItemID, domain.ErrConflict)
		}
		return fmt.Errorf("insert batch lot: %w", err)
	}
	return nil
}

// DeleteLines borra las líneas; los lotes caen por ON DELETE CASCADE.
func (r *DocumentRepo) DeleteLines(ctx context.Context, documentID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM document_lines WHERE document_id = $1`, documentID); err != nil {
		return fmt.Errorf("delete document lines: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetLines(ctx context.Context, documentID string) ([]*entity.LineItem, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+lineColumns+` FROM document_lines WHERE document_id = $1 ORDER BY line_no`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.LineItem
	byID := map[string]*entity.LineItem{}
	for rows.Next() {
		l, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document line: %w", err)
		}
		lines = append(lines, l)
		byID[l.ID] = l
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list document lines: %w", err)
	}
	if len(lines) == 0 {
		return lines, nil
	}

	brows, err := r.q.Query(ctx, `
		SELECT `+batchColumns+`
		FROM batch_lots b
		JOIN document_lines l ON l.id = b.line_item_id
		WHERE l.document_id = $1`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list batch lots: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		b, err := scanBatch(brows)
		if err != nil {
			return nil, fmt.Errorf("scan batch lot: %w", err)
		}
		if l, ok := byID[b.LineItemID]; ok {
			l.Batch = b
		}
	}
	if err := brows.Err(); err != nil {
		return nil, fmt.Errorf("list batch lots: %w", err)
	}
	return lines, nil
}

func (r *DocumentRepo) GetLine(ctx context.Context, id string) (*entity.LineItem, error) {
	l, err := scanLine(r.q.QueryRow(ctx, `SELECT `+lineColumns+` FROM document_lines WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document line: %w", err)
	}
	if l.Batch, err = r.GetBatchByLine(ctx, id); err != nil {
		return nil, err
	}
	return l, nil
}

func (r *DocumentRepo) GetBatchByLine(ctx context.Context, lineID string) (*entity.BatchLot, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, `SELECT `+batchColumns+` FROM batch_lots b WHERE b.line_item_id = $1`, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get batch lot: %w", err)
	}
	return b, nil
}

// FindByReference incluye documentos deshabilitados. Coincidencia por reference_no antes que
// por doc_no; a igualdad, el más reciente.
func (r *DocumentRepo) FindByReference(ctx context.Context, companyID int64, register entity.RegisterKind, partyID int64, ref string) (*entity.Document, error) {
	if ref == "" {
		return nil, nil
	}
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE company_id = $1 AND register = $2
		  AND ($3::bigint = 0 OR party_id = $3)
		  AND (reference_no = $4 OR doc_no = $4)
		ORDER BY (reference_no = $4) DESC, doc_date DESC, seq_no DESC
		LIMIT 1`
	doc, err := scanDocument(r.q.QueryRow(ctx, query, companyID, int(register), partyID, ref))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find document by reference: %w", err)
	}
	return doc, nil
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	var register, regime int
	var partyID, supplierID *int64
	var parentID *string
	var factors []byte
	err := row.Scan(
		&d.ID, &d.CompanyID, &register, &d.SubType, &d.SeqNo, &d.DocNo, &d.FiscalYear, &d.DocDate, &d.DocTime,
		&partyID, &d.PartyName, &supplierID, &d.ReferenceNo, &regime, &parentID,
		&d.GrossAmount, &d.CGSTAmount, &d.SGSTAmount, &d.IGSTAmount, &d.CostFactorTotal, &d.NetAmount,
		&d.AmountInWords, &factors, &d.Enabled, &d.CreatedBy, &d.ModifiedBy, &d.ProcessedAt,
		&d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Register = entity.RegisterKind(register)
	d.TaxRegime = entity.TaxRegime(regime)
	d.PartyID = derefInt(partyID)
	d.SupplierID = derefInt(supplierID)
	d.ParentDocumentID = derefStr(parentID)
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &d.CostFactors); err != nil {
			return nil, fmt.Errorf("decode cost factors: %w", err)
		}
	}
	return &d, nil
}

func scanLine(row pgx.Row) (*entity.LineItem, error) {
	var l entity.LineItem
	var hsnID *int64
	var sourceLine *string
	err := row.Scan(
		&l.ID, &l.DocumentID, &l.LineNo, &l.MaterialID, &l.MaterialRefNo, &l.MaterialRefName, &hsnID,
		&l.Quantity, &l.Rate, &l.GrossAmount, &l.CGSTAmount, &l.SGSTAmount, &l.IGSTAmount, &l.NetAmount,
		&sourceLine,
	)
	if err != nil {
		return nil, err
	}
	l.HSNID = derefInt(hsnID)
	l.SourceLineID = derefStr(sourceLine)
	return &l, nil
}

func scanBatch(row pgx.Row) (*entity.BatchLot, error) {
	var b entity.BatchLot
	var hsnID, packingID, sourceMaterial *int64
	var sourceBatch, sourceLine *string
	err := row.Scan(
		&b.ID, &b.LineItemID, &b.MaterialID, &hsnID, &b.BatchNumber, &b.ExpiryDate, &packingID,
		&b.PackQuantity, &b.TotalQuantity, &b.Rate, &b.TradeRate, &b.MRP,
		&b.GrossAmount, &b.CGSTAmount, &b.SGSTAmount, &b.IGSTAmount, &b.NetAmount,
		&sourceBatch, &sourceLine, &sourceMaterial,
	)
	if err != nil {
		return nil, err
	}
	b.HSNID = derefInt(hsnID)
	b.PackingID = derefInt(packingID)
	b.SourceBatchID = derefStr(sourceBatch)
	b.SourceLineID = derefStr(sourceLine)
	b.SourceMaterialID = derefInt(sourceMaterial)
	return &b, nil
}

// costFactorsJSON serializa los ajustes para la columna JSONB; sin ajustes guarda [].
func costFactorsJSON(factors []entity.CostFactor) ([]byte, error) {
	if len(factors) == 0 {
		return []byte("[]"), nil
	}
	b, err := json.Marshal(factors)
	if err != nil {
		return nil, fmt.Errorf("encode cost factors: %w", err)
	}
	return b, nil
}
