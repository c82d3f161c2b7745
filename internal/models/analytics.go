package models

type DashboardSummary struct {
	From           string          `json:"from"`
	To             string          `json:"to"`
	TotalBilled    float64         `json:"total_billed"`
	TotalCollected float64         `json:"total_collected"`
	Outstanding    float64         `json:"outstanding"`
	TotalExpenses  float64         `json:"total_expenses"`
	WorkforceCost  float64         `json:"workforce_cost"`
	NetProfit      float64         `json:"net_profit"`
	OrdersByStatus map[string]int  `json:"orders_by_status"`
	BillsByStatus  map[string]int  `json:"bills_by_status"`
	UpcomingEvents []UpcomingEvent `json:"upcoming_events"`
	ExpenseByCat   []CategoryTotal `json:"expense_by_category"`
	GuestsServed   int             `json:"guests_served"`
}

type UpcomingEvent struct {
	OrderID      int     `json:"order_id"`
	OrderNumber  string  `json:"order_number"`
	CustomerName string  `json:"customer_name"`
	SessionKey   string  `json:"session_key"`
	Date         string  `json:"date"`
	Time         string  `json:"time,omitempty"`
	Venue        string  `json:"venue,omitempty"`
	Guests       int     `json:"guests"`
	Amount       float64 `json:"amount"`
}

type MonthlyPoint struct {
	Month     string  `json:"month"`
	Billed    float64 `json:"billed"`
	Collected float64 `json:"collected"`
	Expenses  float64 `json:"expenses"`
	Workforce float64 `json:"workforce"`
}

type TopCustomer struct {
	CustomerID int     `json:"customer_id"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Orders     int     `json:"orders"`
	Billed     float64 `json:"billed"`
	Paid       float64 `json:"paid"`
}

type OrderProfit struct {
	OrderID       int     `json:"order_id"`
	OrderNumber   string  `json:"order_number"`
	CustomerName  string  `json:"customer_name"`
	Revenue       float64 `json:"revenue"`
	Expenses      float64 `json:"expenses"`
	WorkforceCost float64 `json:"workforce_cost"`
	Profit        float64 `json:"profit"`
	Margin        float64 `json:"margin"`
}
