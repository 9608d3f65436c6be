package main

import (
	"compress/gzip"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// generateSampleDiscounts writes the discount snapshot files read by the API
// for local runs:
// sales.jsonl.gz   - a products sale, a weekend order-value sale, a free shipping sale
// coupons.jsonl.gz - WELCOME10 (10% off the order), FIXED15 (15.00 PLN/EUR off),
// CHEAPEST50 (half off the cheapest unit, one use per user)
func main() {
	dataDir := "data/discounts"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	files := map[string][]string{
		"sales.jsonl.gz": {
			`{"id":"4f8b2c1e-6a3d-4e5f-9b7c-1d2e3f4a5b6c","name":"Autumn sale","type":"percentage","percentage":"10","target_type":"products","target_is_allow_list":false,"priority":10,"active":true,"created_at":"2026-09-01T00:00:00Z"}`,
			`{"id":"7a9c3e5f-1b2d-4c6e-8f0a-2b4d6f8a0c1e","name":"Weekend bonus","type":"percentage","percentage":"5","target_type":"order-value","priority":20,"active":true,"created_at":"2026-09-01T00:00:00Z","condition_groups":[{"conditions":[{"type":"weekday-in","value":{"weekday":[true,false,false,false,false,false,true]}},{"type":"order-value","value":{"min_values":{"PLN":"200.00","EUR":"50.00"},"include_taxes":true}}]}]}`,
			`{"id":"9e1f3a5b-7c9d-4e1f-a3b5-c7d9e1f3a5b7","name":"Free shipping over 500","type":"percentage","percentage":"100","target_type":"shipping-price","target_is_allow_list":false,"priority":30,"active":true,"created_at":"2026-09-01T00:00:00Z","condition_groups":[{"conditions":[{"type":"order-value","value":{"min_values":{"PLN":"500.00"},"include_taxes":true}}]}]}`,
			`{"id":"2c4e6a8b-0d1f-4a3c-b5e7-f9a1c3e5a7b9","name":"Expired summer sale","type":"percentage","percentage":"30","target_type":"products","priority":5,"active":false,"created_at":"2026-06-01T00:00:00Z"}`,
		},
		"coupons.jsonl.gz": {
			`{"id":"1a2b3c4d-5e6f-4a7b-8c9d-0e1f2a3b4c5d","name":"Welcome","code":"WELCOME10","type":"percentage","percentage":"10","target_type":"order-value","priority":1,"active":true,"created_at":"2026-09-01T00:00:00Z","condition_groups":[{"conditions":[{"type":"max-uses","value":{"max_uses":1000}}]}]}`,
			`{"id":"6b7c8d9e-0f1a-4b2c-9d3e-4f5a6b7c8d9e","name":"Fixed fifteen","code":"FIXED15","type":"amount","amounts":{"PLN":"15.00","EUR":"15.00"},"target_type":"order-value","priority":2,"active":true,"created_at":"2026-09-01T00:00:00Z","condition_groups":[{"conditions":[{"type":"coupons-count","value":{"max_value":1}}]}]}`,
			`{"id":"3d5f7b9d-1f3b-4d5f-8b9d-1f3b5d7f9b1d","name":"Half off cheapest","code":"CHEAPEST50","type":"percentage","percentage":"50","target_type":"cheapest-product","target_is_allow_list":false,"priority":3,"active":true,"created_at":"2026-09-01T00:00:00Z","condition_groups":[{"conditions":[{"type":"max-uses-per-user","value":{"max_uses":1}}]}]}`,
		},
	}

	for filename, lines := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := createSnapshotFile(filePath, lines); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d discounts\n", filePath, len(lines))
	}

	fmt.Println("\nSample discount snapshots created successfully!")
	fmt.Println("\nCoupon codes:")
	fmt.Println("  - WELCOME10  (10% off the order, 1000 uses)")
	fmt.Println("  - FIXED15    (15.00 off, only as the single coupon)")
	fmt.Println("  - CHEAPEST50 (50% off the cheapest unit, once per user)")
}

func createSnapshotFile(filePath string, lines []string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintf(gzipWriter, "%s\n", line); err != nil {
			return fmt.Errorf("failed to write discount: %w", err)
		}
	}

	return nil
}
