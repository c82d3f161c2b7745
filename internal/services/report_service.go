package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"catering-backend/internal/ledger"
	"catering-backend/internal/models"
	"catering-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// BusinessInfo is printed on document headers.
type BusinessInfo struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

// ReportService renders bills, order sheets and exports.
type ReportService struct {
	Business BusinessInfo
}

func NewReportService(business BusinessInfo) *ReportService {
	if business.Name == "" {
		business.Name = "Catering Services"
	}
	return &ReportService{Business: business}
}

func (s *ReportService) header(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, s.Business.Name, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	var contact []string
	for _, v := range []string{s.Business.Address, s.Business.Phone, s.Business.Email} {
		if v != "" {
			contact = append(contact, v)
		}
	}
	if len(contact) > 0 {
		pdf.CellFormat(190, 6, strings.Join(contact, " | "), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(190, 9, title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(190, 5, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(4)
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, title, "1", 1, "L", true, 0, "")
}

func displayDate(date string) string {
	t, err := timeutil.ParseInIST(timeutil.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02-Jan-2006")
}

func rupees(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}

func sessionTable(pdf *gofpdf.Fpdf, o *models.Order) {
	sectionTitle(pdf, "Meal Sessions")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(50, 7, "Session", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Date", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Guests", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, key := range sortedByDate(o.MealTypeAmounts) {
		sess := o.MealTypeAmounts[key]
		pdf.CellFormat(50, 6, key, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, displayDate(sess.Date), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, sess.Time, "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", sess.Guests), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, rupees(sess.Amount), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)
}

// sortedByDate orders session keys by date, then key.
func sortedByDate(sessions models.Sessions) []string {
	keys := ledger.SortedKeys(sessions)
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && sessions[keys[j]].Date < sessions[keys[j-1]].Date; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

// GenerateBillPDF renders a customer bill with charges and payment history.
func (s *ReportService) GenerateBillPDF(bill *models.Bill, order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	s.header(pdf, "Bill "+bill.BillNumber)

	sectionTitle(pdf, "Customer")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", order.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", order.CustomerPhone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Order: %s", order.OrderNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Event: %s", order.EventName), "RB", 1, "L", false, 0, "")
	if order.Venue != "" {
		pdf.CellFormat(190, 7, fmt.Sprintf("Venue: %s", order.Venue), "LRB", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	sessionTable(pdf, order)

	sectionTitle(pdf, "Charges")
	pdf.SetFont("Arial", "", 10)
	line := func(label string, amount float64) {
		pdf.CellFormat(150, 6, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, rupees(amount), "1", 1, "R", false, 0, "")
	}
	line("Meal sessions", ledger.SessionsTotal(order.MealTypeAmounts))
	for _, st := range order.Stalls {
		line("Stall: "+st.Name, st.Cost)
	}
	if order.TransportCost > 0 {
		line("Transport", order.TransportCost)
	}
	if order.WaterCost > 0 {
		line("Water", order.WaterCost)
	}
	if order.Discount > 0 {
		line("Discount", -order.Discount)
	}
	if len(order.Services) > 0 {
		pdf.CellFormat(190, 6, "Services: "+strings.Join(order.Services, ", "), "1", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(63, 8, "Total: "+rupees(bill.TotalAmount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, "Paid: "+rupees(bill.PaidAmount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, "Remaining: "+rupees(bill.RemainingAmount), "1", 1, "C", false, 0, "")

	if bill.RemainingAmount > 0 {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, "Status: "+strings.ToUpper(bill.Status), "1", 1, "C", true, 0, "")

	if len(bill.PaymentHistory) > 0 {
		pdf.Ln(5)
		sectionTitle(pdf, "Payment History")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(35, 7, "Date", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Source", "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 7, "Method", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Amount", "1", 0, "C", true, 0, "")
		pdf.CellFormat(60, 7, "Note", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, p := range bill.PaymentHistory {
			note := p.Note
			if len(note) > 35 {
				note = note[:32] + "..."
			}
			pdf.CellFormat(35, 6, timeutil.ToIST(p.PaidAt).Format("02-Jan-2006"), "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, p.Source, "1", 0, "C", false, 0, "")
			pdf.CellFormat(30, 6, p.Method, "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, rupees(p.Amount), "1", 0, "R", false, 0, "")
			pdf.CellFormat(60, 6, note, "1", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GenerateOrderSheetPDF renders the kitchen/ops sheet: sessions, items and
// stalls without money columns beyond session amounts.
func (s *ReportService) GenerateOrderSheetPDF(order *models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()
	s.header(pdf, "Order Sheet "+order.OrderNumber)

	sectionTitle(pdf, "Event")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", order.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", order.CustomerPhone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Event: %s", order.EventName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", order.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, fmt.Sprintf("Venue: %s", order.Venue), "LRB", 1, "L", false, 0, "")
	pdf.Ln(4)

	sessionTable(pdf, order)

	if len(order.Items) > 0 {
		sectionTitle(pdf, "Menu")
		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(50, 7, "Session", "1", 0, "C", true, 0, "")
		pdf.CellFormat(100, 7, "Item", "1", 0, "C", true, 0, "")
		pdf.CellFormat(40, 7, "Qty", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, it := range order.Items {
			pdf.CellFormat(50, 6, it.SessionKey, "1", 0, "L", false, 0, "")
			pdf.CellFormat(100, 6, it.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(40, 6, fmt.Sprintf("%g", it.Quantity), "1", 1, "C", false, 0, "")
		}
		pdf.Ln(4)
	}

	if len(order.Stalls) > 0 || len(order.Services) > 0 {
		sectionTitle(pdf, "Stalls & Services")
		pdf.SetFont("Arial", "", 10)
		for _, st := range order.Stalls {
			label := st.Name
			if st.Notes != "" {
				label += " (" + st.Notes + ")"
			}
			pdf.CellFormat(190, 6, label, "1", 1, "L", false, 0, "")
		}
		if len(order.Services) > 0 {
			pdf.CellFormat(190, 6, "Services: "+strings.Join(order.Services, ", "), "1", 1, "L", false, 0, "")
		}
	}

	if order.Notes != "" {
		pdf.Ln(4)
		sectionTitle(pdf, "Notes")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 6, order.Notes, "1", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExpensesCSV exports expenses with their allocations flattened.
func (s *ReportService) ExpensesCSV(expenses []*models.Expense) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"#", "Date", "Category", "Description", "Vendor", "Method", "Amount", "Order", "Allocations"})
	for i, e := range expenses {
		order := ""
		if e.OrderID != nil {
			order = fmt.Sprintf("%d", *e.OrderID)
		}
		var allocs []string
		for _, a := range e.BulkAllocations {
			ref := fmt.Sprintf("%d", a.OrderID)
			if a.OrderNumber != "" {
				ref = a.OrderNumber
			}
			allocs = append(allocs, fmt.Sprintf("%s:%.2f", ref, a.Amount))
		}
		w.Write([]string{
			fmt.Sprintf("%d", i+1),
			timeutil.ToIST(e.ExpenseDate).Format(timeutil.DateLayout),
			e.Category,
			e.Description,
			e.Vendor,
			e.PaymentMethod,
			fmt.Sprintf("%.2f", e.Amount),
			order,
			strings.Join(allocs, "; "),
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
