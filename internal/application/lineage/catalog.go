package lineage

import (
	"context"
	"fmt"

	"github.com/jhoicas/pharmadist-core/internal/application/ports"
	"github.com/jhoicas/pharmadist-core/internal/domain/entity"
	"github.com/jhoicas/pharmadist-core/internal/domain/repository"
)

// Catalog mapas inmutables de maestros armados una vez por ensamble.
// Un ID ausente devuelve nil; el llamador decide si es error.
type Catalog struct {
	materials map[int64]*entity.Material
	hsn       map[int64]*entity.HSN
	packings  map[int64]*entity.Packing
}

func (c *Catalog) Material(id int64) *entity.Material { return c.materials[id] }
func (c *Catalog) HSN(id int64) *entity.HSN           { return c.hsn[id] }
func (c *Catalog) Packing(id int64) *entity.Packing   { return c.packings[id] }

// CatalogLoader consulta los registros de materiales, HSN y presentaciones.
type CatalogLoader struct {
	materials repository.MaterialRegistry
	hsn       repository.HSNRegistry
	packings  repository.PackingRegistry
}

// NewCatalogLoader construye el cargador.
func NewCatalogLoader(reg ports.Registries) *CatalogLoader {
	return &CatalogLoader{materials: reg.Materials, hsn: reg.HSN, packings: reg.Packings}
}

// Load trae cada material (de la empresa), su HSN y las presentaciones pedidas más las del material.
func (l *CatalogLoader) Load(ctx context.Context, companyID int64, materialIDs, packingIDs []int64) (*Catalog, error) {
	c := &Catalog{
		materials: make(map[int64]*entity.Material, len(materialIDs)),
		hsn:       map[int64]*entity.HSN{},
		packings:  map[int64]*entity.Packing{},
	}
	for _, id := range materialIDs {
		if _, ok := c.materials[id]; ok || id <= 0 {
			continue
		}
		m, err := l.materials.GetMaterial(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get material %d: %w", id, err)
		}
		if m == nil || (m.CompanyID != 0 && m.CompanyID != companyID) {
			continue
		}
		c.materials[id] = m
		if m.HSNID > 0 {
			if err := l.loadHSN(ctx, c, m.HSNID); err != nil {
				return nil, err
			}
		}
		if m.PackingID > 0 {
			packingIDs = append(packingIDs, m.PackingID)
		}
	}
	for _, id := range packingIDs {
		if _, ok := c.packings[id]; ok || id <= 0 {
			continue
		}
		p, err := l.packings.GetPacking(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get packing %d: %w", id, err)
		}
		if p != nil {
			c.packings[id] = p
		}
	}
	return c, nil
}

func (l *CatalogLoader) loadHSN(ctx context.Context, c *Catalog, id int64) error {
	if _, ok := c.hsn[id]; ok {
		return nil
	}
	h, err := l.hsn.GetHSN(ctx, id)
	if err != nil {
		return fmt.Errorf("get hsn %d: %w", id, err)
	}
	if h != nil {
		c.hsn[id] = h
	}
	return nil
}
