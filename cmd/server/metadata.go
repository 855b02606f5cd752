package main

import (
	"imprint/internal/domain/catalogs/author"
	"imprint/internal/domain/catalogs/contract"
	"imprint/internal/domain/catalogs/organization"
	"imprint/internal/domain/catalogs/title"
	"imprint/internal/domain/documents/returns_batch"
	"imprint/internal/domain/documents/sales_batch"
	"imprint/internal/domain/statements"
	"imprint/internal/metadata"
)

// setupMetadataRegistry initializes and populates the metadata registry.
func setupMetadataRegistry() *metadata.Registry {
	reg := metadata.NewRegistry()

	// Helper to register entity with a display label
	register := func(entity interface{}, name string, typ metadata.EntityType, label string) {
		def := metadata.Inspect(entity, name, typ)
		def.Label = label

		// Here we could also augment fields with labels if we had a translation map.
		// For MVP we rely on Inspect's auto-guessing based on field names.

		reg.Register(def)
	}

	// --- Catalogs ---
	register(author.Author{}, "Author", metadata.TypeCatalog, "Authors")
	register(title.Title{}, "Title", metadata.TypeCatalog, "Titles")
	register(contract.Contract{}, "Contract", metadata.TypeCatalog, "Royalty contracts")
	register(organization.Organization{}, "Organization", metadata.TypeCatalog, "Organizations")

	// --- Documents ---
	register(sales_batch.SalesBatch{}, "SalesBatch", metadata.TypeDocument, "Sales batches")
	register(returns_batch.ReturnsBatch{}, "ReturnsBatch", metadata.TypeDocument, "Returns batches")
	register(statements.Statement{}, "Statement", metadata.TypeDocument, "Royalty statements")

	return reg
}
