package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"storefront-backend/config"
	"storefront-backend/internal/app/model"
	"storefront-backend/internal/app/repository"
	"storefront-backend/internal/db"
)

// Imports a product catalog from an xlsx file. Expected columns:
// name, description, price, stock, category_slug, image_url. The first
// row is treated as a header and skipped.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	productRepo := repository.NewProductRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())

	categoryBySlug := map[string]uint{}
	categories, err := categoryRepo.FindAll()
	if err != nil {
		log.Fatal("Failed to load categories:", err)
	}
	for _, c := range categories {
		categoryBySlug[c.Slug] = c.ID
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	products, skipped, err := readProductsFromXLSX(filePath, categoryBySlug)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total products to import: %d (skipped %d invalid rows)\n", len(products), skipped)
	if len(products) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	batchSize := 500
	if err := productRepo.BulkCreate(products, batchSize); err != nil {
		log.Fatal("Failed to bulk create products:", err)
	}

	fmt.Printf("Import completed successfully: %d products\n", len(products))
}

func readProductsFromXLSX(filePath string, categoryBySlug map[string]uint) ([]model.Product, int, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, 0, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, 0, fmt.Errorf("sheet %q has no data rows", sheetName)
	}

	var products []model.Product
	skipped := 0

	for i, row := range rows[1:] {
		product, ok := parseProductRow(row, categoryBySlug)
		if !ok {
			fmt.Printf("Skipping invalid row %d\n", i+2)
			skipped++
			continue
		}
		products = append(products, product)
	}

	return products, skipped, nil
}

func parseProductRow(row []string, categoryBySlug map[string]uint) (model.Product, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	name := cell(0)
	if name == "" {
		return model.Product{}, false
	}

	price, err := strconv.ParseFloat(cell(2), 64)
	if err != nil || price <= 0 {
		return model.Product{}, false
	}

	stock := 0
	if s := cell(3); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil || stock < 0 {
			return model.Product{}, false
		}
	}

	product := model.Product{
		Name:          name,
		Description:   cell(1),
		Price:         price,
		StockQuantity: stock,
		ImageURL:      cell(5),
		IsActive:      true,
	}

	if slug := cell(4); slug != "" {
		if id, ok := categoryBySlug[slug]; ok {
			categoryID := id
			product.CategoryID = &categoryID
		}
	}

	return product, true
}
