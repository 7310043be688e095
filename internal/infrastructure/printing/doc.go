// Package printing renders completed-sale receipts as HTML for thermal
// receipt printers.
//
// Templates are embedded and parsed once. The UI shell fetches the rendered
// document and hands it to the printer driver.
//
// Example usage:
//
//	renderer, err := NewReceiptRenderer(ReceiptConfig{
//	    Store:        StoreInfo{Name: "Corner Shop"},
//	    DefaultPaper: Paper80mm,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	html, err := renderer.Render(ctx, receipt, Paper58mm)
package printing
