package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-retail-service/internal/apperr"
	"github.com/fekuna/omnipos-retail-service/internal/model"
	"github.com/fekuna/omnipos-retail-service/internal/product/dto"
	"github.com/jmoiron/sqlx"
)

var (
	ErrProductNotFound = apperr.NotFound("ProductNotFound", "product not found")
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const (
	insertProductQuery = `
        INSERT INTO products (
            id, code, supplier_sku, description, supplier, color, photo_url,
            purchase_price, freight_cost, packaging_cost, sale_price,
            discontinued, created_at, updated_at
        )
        VALUES (
            :id, :code, :supplier_sku, :description, :supplier, :color, :photo_url,
            :purchase_price, :freight_cost, :packaging_cost, :sale_price,
            :discontinued, :created_at, :updated_at
        )
    `
	insertVariantQuery = `
        INSERT INTO product_variants (id, product_id, color_id, photo_url, created_at)
        VALUES (:id, :product_id, :color_id, :photo_url, :created_at)
    `
	insertStockQuery = `
        INSERT INTO stock_entries (id, variant_id, size_id, quantity, barcode, updated_at)
        VALUES (:id, :variant_id, :size_id, :quantity, :barcode, NOW())
    `
	selectVariantsQuery = `
        SELECT v.id, v.product_id, v.color_id, c.name AS color_name, v.photo_url, v.created_at
        FROM product_variants v
        LEFT JOIN colors c ON c.id = v.color_id
        WHERE v.product_id IN (?)
        ORDER BY v.created_at
    `
	selectStockQuery = `
        SELECT s.id, s.variant_id, s.size_id, z.name AS size_name, z.sort_order AS size_order, s.quantity, s.barcode
        FROM stock_entries s
        JOIN sizes z ON z.id = s.size_id
        WHERE s.variant_id IN (?)
        ORDER BY z.sort_order, z.name
    `
)

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertProductQuery, p); err != nil {
		return apperr.FromDB(err, "CodeTaken", "product code is already in use")
	}

	for i := range p.Variants {
		v := &p.Variants[i]
		if _, err := tx.NamedExecContext(ctx, insertVariantQuery, v); err != nil {
			return apperr.FromDB(err, "ColorAlreadyOnProduct", "this color is already registered for the product")
		}
		for j := range v.Stock {
			if _, err := tx.NamedExecContext(ctx, insertStockQuery, &v.Stock[j]); err != nil {
				return apperr.FromDB(err, "BarcodeTaken", "barcode is already assigned to another item")
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product: %w", err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := `SELECT * FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	products := []model.Product{product}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

// FindByIDs returns the products in the order of ids, skipping unknown ids.
func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var found []model.Product
	if err := r.DB.SelectContext(ctx, &found, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, found); err != nil {
		return nil, err
	}

	byID := make(map[string]model.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]model.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, error) {
	products := []model.Product{}

	conditions := []string{}
	args := map[string]interface{}{}

	if f.Discontinued != nil {
		conditions = append(conditions, "discontinued = :discontinued")
		args["discontinued"] = *f.Discontinued
	}
	if f.Search != "" {
		conditions = append(conditions, `(
            description ILIKE :search OR code ILIKE :search OR supplier_sku ILIKE :search OR color ILIKE :search
            OR id IN (
                SELECT v.product_id FROM product_variants v
                JOIN stock_entries s ON s.variant_id = v.id
                WHERE s.barcode ILIKE :search
            )
        )`)
		args["search"] = "%" + f.Search + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf("SELECT * FROM products%s ORDER BY created_at DESC", whereClause)

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &products, args); err != nil {
		return nil, err
	}
	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindActiveCatalog returns every product still on sale, newest first, with variants and stock.
func (r *PGRepository) FindActiveCatalog(ctx context.Context) ([]model.Product, error) {
	discontinued := false
	return r.FindAll(ctx, &dto.ProductFilters{Discontinued: &discontinued})
}

// attachVariants loads variants and stock entries for products in two batched queries.
func (r *PGRepository) attachVariants(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	productIDs := make([]string, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}
	query, args, err := sqlx.In(selectVariantsQuery, productIDs)
	if err != nil {
		return err
	}
	var variants []model.Variant
	if err := r.DB.SelectContext(ctx, &variants, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load variants: %w", err)
	}
	if len(variants) == 0 {
		return nil
	}

	variantIDs := make([]string, len(variants))
	for i, v := range variants {
		variantIDs[i] = v.ID
	}
	query, args, err = sqlx.In(selectStockQuery, variantIDs)
	if err != nil {
		return err
	}
	var stock []model.StockEntry
	if err := r.DB.SelectContext(ctx, &stock, r.DB.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to load stock entries: %w", err)
	}

	stockByVariant := make(map[string][]model.StockEntry, len(variants))
	for _, s := range stock {
		stockByVariant[s.VariantID] = append(stockByVariant[s.VariantID], s)
	}
	variantsByProduct := make(map[string][]model.Variant, len(products))
	for _, v := range variants {
		v.Stock = stockByVariant[v.ID]
		variantsByProduct[v.ProductID] = append(variantsByProduct[v.ProductID], v)
	}
	for i := range products {
		products[i].Variants = variantsByProduct[products[i].ID]
	}
	return nil
}

func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET description = :description,
            supplier = :supplier,
            supplier_sku = :supplier_sku,
            purchase_price = :purchase_price,
            freight_cost = :freight_cost,
            packaging_cost = :packaging_cost,
            sale_price = :sale_price,
            discontinued = :discontinued,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return expectRow(res)
}

func (r *PGRepository) SetDiscontinued(ctx context.Context, id string, discontinued bool) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET discontinued = $1, updated_at = NOW() WHERE id = $2`,
		discontinued, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set discontinued: %w", err)
	}
	return expectRow(res)
}

func (r *PGRepository) AddVariant(ctx context.Context, v *model.Variant) error {
	if _, err := r.DB.NamedExecContext(ctx, insertVariantQuery, v); err != nil {
		return apperr.FromDB(err, "ColorAlreadyOnProduct", "this color is already registered for the product")
	}
	return nil
}

func (r *PGRepository) FindSuppliers(ctx context.Context, term string) ([]string, error) {
	suppliers := []string{}
	query := `
        SELECT DISTINCT supplier FROM products
        WHERE supplier <> '' AND supplier ILIKE $1
        ORDER BY supplier
    `
	if err := r.DB.SelectContext(ctx, &suppliers, query, "%"+term+"%"); err != nil {
		return nil, err
	}
	return suppliers, nil
}

func expectRow(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrProductNotFound
	}
	return nil
}
