package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"smartshodhai/internal/app"
	"smartshodhai/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "ask", "chat", "a":
		if len(args) < 2 {
			log.Fatal("Usage: app ask \"<question>\"")
		}
		mode := "fast"
		if len(args) > 2 && args[2] == "--think" {
			mode = "think"
		}
		reply, err := svc.Chat(ctx, app.ChatRequest{Prompt: args[1], Mode: mode})
		if err != nil {
			log.Fatalf("Assistant error: %v", err)
		}
		fmt.Println(reply)

	case "scan", "s":
		if len(args) < 3 {
			log.Fatal("Usage: app scan <product|book> <image-file>")
		}
		mode := core.ScanMode(args[1])
		data, err := os.ReadFile(args[2])
		if err != nil {
			log.Fatalf("Failed to read image: %v", err)
		}
		result, err := svc.AnalyzeScan(ctx, mode, app.Attachment{
			MimeType: mimeFromPath(args[2]),
			Data:     data,
		})
		if err != nil {
			log.Fatalf("Scan error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)

	case "apply":
		var scan core.ScanResult
		if err := json.NewDecoder(os.Stdin).Decode(&scan); err != nil {
			log.Fatalf("Invalid JSON: %v", err)
		}
		outcome, err := svc.ConfirmScan(ctx, scan)
		if err != nil {
			log.Fatalf("Apply failed: %v", err)
		}
		fmt.Println("Scan applied.")
		if outcome.Order != nil {
			fmt.Printf("Order %s created for ৳%s.\n", outcome.Order.ID, outcome.Order.TotalAmount.StringFixed(2))
		}
		if outcome.DueDelta.IsPositive() {
			fmt.Printf("Baki increased by ৳%s.\n", outcome.DueDelta.StringFixed(2))
		}

	case "speak":
		if len(args) < 2 {
			log.Fatal("Usage: app speak \"<text>\" [out.wav]")
		}
		out := "speech.wav"
		if len(args) > 2 {
			out = args[2]
		}
		audio, err := svc.Speak(ctx, app.SpeechRequest{Text: args[1]})
		if err != nil {
			log.Fatalf("Speech error: %v", err)
		}
		if err := os.WriteFile(out, audio, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", out, err)
		}
		fmt.Printf("Wrote %s (%d bytes).\n", out, len(audio))

	case "stock", "low":
		result, err := svc.GetLowStock(ctx)
		if err != nil {
			log.Fatalf("Failed to get low stock: %v", err)
		}
		printLowStock(result)

	case "dash", "dashboard":
		stats, err := svc.GetDashboard(ctx)
		if err != nil {
			log.Fatalf("Failed to get dashboard: %v", err)
		}
		printDashboard(stats)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: ask, scan, apply, speak, stock, dash", args[0])
	}
}

func mimeFromPath(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func printLowStock(result *app.ProductListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "LOW STOCK")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-34s %8s %8s %8s\n", "PRODUCT", "QTY", "MIN", "PRICE")
	fmt.Println(strings.Repeat("-", 62))
	for _, p := range result.Products {
		fmt.Printf("  %-34s %8d %8d %8s\n", p.Name, p.Quantity, p.MinStockLevel, p.SellingPrice.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printDashboard(stats *core.DashboardStats) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-58s\n", "SHOP DASHBOARD")
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Revenue          : ৳%s\n", stats.TotalRevenue.StringFixed(2))
	fmt.Printf("  Orders           : %d (%d processing)\n", stats.TotalOrders, stats.PendingOrders)
	fmt.Printf("  Inventory value  : ৳%s\n", stats.InventoryValue.StringFixed(2))
	fmt.Printf("  Low stock items  : %d\n", stats.LowStockCount)
	fmt.Printf("  Customers        : %d\n", stats.CustomerCount)
	fmt.Printf("  Total baki       : ৳%s\n", stats.TotalDues.StringFixed(2))
	fmt.Println(strings.Repeat("=", 62))
}
