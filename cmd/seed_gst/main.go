// seed_gst genera el script SQL para poblar las tablas paramétricas de GST (estados y códigos HSN)
// a partir de las hojas exportadas desde Excel (CSV en Windows-1252).
//
// Uso: go run ./cmd/seed_gst [states.csv] [hsn.csv]
// Por defecto busca states.csv y hsn.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_gst.sql
//
// states.csv: id,code,description,state_type (0 intra, 1 inter)
// hsn.csv:    id,code,cgst_pct,sgst_pct,igst_pct
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

type stateRow struct {
	id          int64
	code        string
	description string
	stateType   int
}

type hsnRow struct {
	id               int64
	code             string
	cgst, sgst, igst decimal.Decimal
}

func main() {
	statesPath, hsnPath := "states.csv", "hsn.csv"
	if len(os.Args) > 1 {
		statesPath = os.Args[1]
	}
	if len(os.Args) > 2 {
		hsnPath = os.Args[2]
	}

	states, err := readFile(statesPath, parseStates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer estados: %v\n", err)
		os.Exit(1)
	}
	hsns, err := readFile(hsnPath, parseHSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer HSN: %v\n", err)
		os.Exit(1)
	}

	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_gst.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, states, hsns); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d estados, %d códigos HSN\n", outPath, len(states), len(hsns))
}

func readFile[T any](path string, parse func(io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parse(transform.NewReader(f, charmap.Windows1252.NewDecoder()))
}

// records lee el CSV y descarta la fila de encabezado si la primera columna no es numérica.
func records(r io.Reader, fields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) > 0 {
		if _, err := strconv.ParseInt(strings.TrimSpace(all[0][0]), 10, 64); err != nil {
			all = all[1:]
		}
	}
	return all, nil
}

func parseStates(r io.Reader) ([]stateRow, error) {
	recs, err := records(r, 4)
	if err != nil {
		return nil, err
	}
	out := make([]stateRow, 0, len(recs))
	for i, rec := range recs {
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fila %d: id %q: %w", i+1, rec[0], err)
		}
		st, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil || (st != 0 && st != 1) {
			return nil, fmt.Errorf("fila %d: state_type %q debe ser 0 o 1", i+1, rec[3])
		}
		out = append(out, stateRow{
			id:          id,
			code:        strings.ToUpper(strings.TrimSpace(rec[1])),
			description: strings.TrimSpace(rec[2]),
			stateType:   st,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func parseHSN(r io.Reader) ([]hsnRow, error) {
	recs, err := records(r, 5)
	if err != nil {
		return nil, err
	}
	out := make([]hsnRow, 0, len(recs))
	for i, rec := range recs {
		id, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fila %d: id %q: %w", i+1, rec[0], err)
		}
		var pct [3]decimal.Decimal
		for k := 0; k < 3; k++ {
			v, err := decimal.NewFromString(strings.TrimSpace(rec[2+k]))
			if err != nil || v.IsNegative() {
				return nil, fmt.Errorf("fila %d: porcentaje %q inválido", i+1, rec[2+k])
			}
			pct[k] = v
		}
		// IGST es la suma de CGST y SGST en las tarifas vigentes.
		if !pct[0].Add(pct[1]).Equal(pct[2]) {
			fmt.Fprintf(os.Stderr, "aviso: HSN %s cgst+sgst (%s) distinto de igst (%s)\n",
				rec[1], pct[0].Add(pct[1]), pct[2])
		}
		out = append(out, hsnRow{id: id, code: strings.TrimSpace(rec[1]), cgst: pct[0], sgst: pct[1], igst: pct[2]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out, nil
}

func writeSQL(w io.Writer, states []stateRow, hsns []hsnRow) error {
	var b strings.Builder
	b.WriteString("-- Estados y códigos HSN con tarifas GST\n")
	b.WriteString("-- Generado por cmd/seed_gst\n\n")

	if len(states) > 0 {
		b.WriteString("-- 1. Estados\n")
		b.WriteString("INSERT INTO states (id, code, description, state_type) VALUES\n")
		for i, s := range states {
			fmt.Fprintf(&b, "  (%d, '%s', '%s', %d)", s.id, escapeSQL(s.code), escapeSQL(s.description), s.stateType)
			b.WriteString(sep(i, len(states)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, description = EXCLUDED.description, state_type = EXCLUDED.state_type;\n\n")
	}

	if len(hsns) > 0 {
		b.WriteString("-- 2. Códigos HSN\n")
		b.WriteString("INSERT INTO hsn_codes (id, code, cgst_pct, sgst_pct, igst_pct) VALUES\n")
		for i, h := range hsns {
			fmt.Fprintf(&b, "  (%d, '%s', %s, %s, %s)", h.id, escapeSQL(h.code),
				h.cgst.StringFixed(2), h.sgst.StringFixed(2), h.igst.StringFixed(2))
			b.WriteString(sep(i, len(hsns)))
		}
		b.WriteString("ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, cgst_pct = EXCLUDED.cgst_pct, sgst_pct = EXCLUDED.sgst_pct, igst_pct = EXCLUDED.igst_pct;\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func sep(i, n int) string {
	if i < n-1 {
		return ",\n"
	}
	return "\n"
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
