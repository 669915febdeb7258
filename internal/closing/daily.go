package closing

import (
	"time"

	"lokanta-backend/internal/models"

	"github.com/shopspring/decimal"
)

type SectionSummary struct {
	Section  models.MenuSection `json:"section"`
	Quantity int                `json:"quantity"`
	Sales    decimal.Decimal    `json:"sales"`
}

type DailySummary struct {
	Date          string            `json:"date"`
	Sections      []SectionSummary  `json:"sections"`
	TotalSales    decimal.Decimal   `json:"total_sales"`
	Expenses      []ExpenseLine     `json:"expenses"`
	TotalExpenses decimal.Decimal   `json:"total_expenses"`
}

type ExpenseLine struct {
	Category models.ExpenseCategory `json:"category"`
	Amount   decimal.Decimal        `json:"amount"`
	Note     string                 `json:"note"`
}

// DailySummary: Tek günün bölüm bazlı satış dökümü ve o günün masrafları.
// Yalnızca ödenen siparişler sayılır.
func (s *Service) DailySummary(dateStr string) (*DailySummary, error) {
	if dateStr == "" {
		dateStr = time.Now().Format(dateLayout)
	}
	day, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return nil, &InvalidRangeError{Start: dateStr, End: dateStr}
	}
	dayEnd := day.AddDate(0, 0, 1)

	var orders []models.Order
	if err := s.db.
		Preload("Items.MenuItem").
		Where("is_paid = ? AND created_at >= ? AND created_at < ?", true, day, dayEnd).
		Find(&orders).Error; err != nil {
		return nil, err
	}

	// bölüm sırası sabit tutulur
	sectionOrder := []models.MenuSection{
		models.SectionBarista,
		models.SectionMutfak,
		models.SectionKantin,
		models.SectionNargile,
		models.SectionEkstra,
	}
	qtyBySection := map[models.MenuSection]int{}
	salesBySection := map[models.MenuSection]decimal.Decimal{}
	totalSales := decimal.Zero
	for i := range orders {
		for j := range orders[i].Items {
			item := &orders[i].Items[j]
			section := item.MenuItem.Section
			qtyBySection[section] += item.Quantity
			salesBySection[section] = salesBySection[section].Add(item.TotalPrice())
		}
		totalSales = totalSales.Add(orders[i].Total())
	}

	sections := make([]SectionSummary, 0, len(sectionOrder))
	for _, section := range sectionOrder {
		if qtyBySection[section] == 0 {
			continue
		}
		sections = append(sections, SectionSummary{
			Section:  section,
			Quantity: qtyBySection[section],
			Sales:    salesBySection[section],
		})
	}

	var expenses []models.ExtraExpense
	if err := s.db.
		Where("created_at >= ? AND created_at < ?", day, dayEnd).
		Order("id ASC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	lines := make([]ExpenseLine, 0, len(expenses))
	totalExpenses := decimal.Zero
	for i := range expenses {
		lines = append(lines, ExpenseLine{
			Category: expenses[i].Category,
			Amount:   expenses[i].Amount,
			Note:     expenses[i].Note,
		})
		totalExpenses = totalExpenses.Add(expenses[i].Amount)
	}

	return &DailySummary{
		Date:          dateStr,
		Sections:      sections,
		TotalSales:    totalSales,
		Expenses:      lines,
		TotalExpenses: totalExpenses,
	}, nil
}
