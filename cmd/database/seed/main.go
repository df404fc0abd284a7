package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"foodgram/cmd/config"
	"foodgram/internal/utils"
	"foodgram/pkg/catalog"
)

// Loads catalog reference data from CSV files. Ingredients rows are
// "name,measurement_unit"; tag rows are "name,color,slug":
//
//	go run ./cmd/database/seed data/ingredients.csv [data/tags.csv]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: seed <ingredients csv> [tags csv]")
	}

	utils.LoadConfig()
	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	catalogService := catalog.NewCatalogService(catalog.NewCatalogRepository(db))

	file, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("failed to open file %s: %v", os.Args[1], err)
	}
	defer file.Close()

	imported, err := catalogService.ImportIngredients(context.Background(), file)
	if err != nil {
		log.Fatalf("ingredient import failed after %d rows: %v", imported, err)
	}
	fmt.Printf("imported %d ingredients\n", imported)

	if len(os.Args) > 2 {
		tagsFile, err := os.Open(os.Args[2])
		if err != nil {
			log.Fatalf("failed to open file %s: %v", os.Args[2], err)
		}
		defer tagsFile.Close()

		importedTags, err := catalogService.ImportTags(context.Background(), tagsFile)
		if err != nil {
			log.Fatalf("tag import failed after %d rows: %v", importedTags, err)
		}
		fmt.Printf("imported %d tags\n", importedTags)
	}
}
