package report

import (
	"time"

	"github.com/shopspring/decimal"

	"jan-server/services/report-api/internal/infrastructure/database/entities"
)

// Dataset is a self-contained copy of the commerce tables.
type Dataset struct {
	Categories []entities.Category
	Brands     []entities.Brand
	Clients    []entities.Client
	Products   []entities.Product
	Sales      []entities.Sale
}

func intPtr(v int) *int { return &v }

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DemoDataset builds a small store whose sales fall in the month of ref and
// the month before, expressed in loc.
func DemoDataset(ref time.Time, loc *time.Location) Dataset {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
	prevMonth := monthStart.AddDate(0, -1, 14)

	brandLogitech, brandRazer, brandSamsung, brandHyperX := uint(1), uint(2), uint(3), uint(4)

	line := func(id, sale, product uint, qty int, unit string) entities.SaleItem {
		price := money(unit)
		return entities.SaleItem{
			ID:         id,
			VentaID:    sale,
			ProductoID: product,
			Cantidad:   qty,
			PrecioUnit: price,
			Subtotal:   price.Mul(decimal.NewFromInt(int64(qty))),
		}
	}
	sale := func(id uint, folio string, client uint, status string, at time.Time, items ...entities.SaleItem) entities.Sale {
		total := decimal.Zero
		for _, it := range items {
			total = total.Add(it.Subtotal)
		}
		return entities.Sale{
			ID:        id,
			Folio:     folio,
			ClienteID: client,
			Estado:    status,
			Subtotal:  total,
			Total:     total,
			CreadoEn:  at,
			Items:     items,
		}
	}

	// V-0002 carries a shipping charge, so its total is above its line sum.
	shipped := sale(2, "V-0002", 2, "pagada", monthStart.Add(15*time.Hour),
		line(3, 2, 1, 1, "45.00"),
		line(4, 2, 4, 1, "80.00"),
	)
	shipped.Total = shipped.Subtotal.Add(money("12.50"))

	return Dataset{
		Categories: []entities.Category{
			{ID: 1, Nombre: "Periféricos", Activa: true},
			{ID: 2, Nombre: "Monitores", Activa: true},
			{ID: 3, Nombre: "Audio", Activa: true},
		},
		Brands: []entities.Brand{
			{ID: brandLogitech, Nombre: "Logitech", Activa: true},
			{ID: brandRazer, Nombre: "Razer", Activa: true},
			{ID: brandSamsung, Nombre: "Samsung", Activa: true},
			{ID: brandHyperX, Nombre: "HyperX", Activa: true},
		},
		Clients: []entities.Client{
			{ID: 1, Nombre: "Ana Pérez", Email: "ana@example.com", Activo: true},
			{ID: 2, Nombre: "Bruno Díaz", Email: "bruno@example.com", Activo: true},
			{ID: 3, Nombre: "Carla Gómez", Email: "carla@example.com", Activo: true},
		},
		Products: []entities.Product{
			{ID: 1, Nombre: "Mouse Logitech G502 Hero", CategoriaID: 1, MarcaID: &brandLogitech, Precio: money("45.00"), Stock: 25, StockMinimo: intPtr(10), Activo: true},
			{ID: 2, Nombre: "Teclado Razer BlackWidow", CategoriaID: 1, MarcaID: &brandRazer, Precio: money("120.00"), Stock: 4, StockMinimo: intPtr(5), Activo: true},
			{ID: 3, Nombre: "Monitor Samsung Odyssey 27", CategoriaID: 2, MarcaID: &brandSamsung, Precio: money("350.00"), Stock: 2, StockMinimo: intPtr(3), Activo: true},
			{ID: 4, Nombre: "Auriculares HyperX Cloud II", CategoriaID: 3, MarcaID: &brandHyperX, Precio: money("80.00"), Stock: 15, Activo: true},
			{ID: 5, Nombre: "Mousepad Razer Gigantus", CategoriaID: 1, MarcaID: &brandRazer, Precio: money("20.00"), Stock: 0, StockMinimo: intPtr(5), Activo: true},
			{ID: 6, Nombre: "Webcam Logitech C920", CategoriaID: 1, MarcaID: &brandLogitech, Precio: money("70.00"), Stock: 8, Activo: true},
			{ID: 7, Nombre: "Parlante Genérico", CategoriaID: 3, Precio: money("15.00"), Stock: 1, StockMinimo: intPtr(2), Activo: false},
		},
		Sales: []entities.Sale{
			sale(1, "V-0001", 1, "pagada", monthStart.Add(10*time.Hour),
				line(1, 1, 1, 2, "45.00"),
				line(2, 1, 2, 1, "120.00"),
			),
			shipped,
			sale(3, "V-0003", 3, "pendiente", monthStart.Add(16*time.Hour),
				line(5, 3, 3, 1, "350.00"),
			),
			sale(4, "V-0004", 3, "pagada", prevMonth.Add(11*time.Hour),
				line(6, 4, 3, 1, "350.00"),
				line(7, 4, 5, 2, "20.00"),
			),
			sale(5, "V-0005", 1, "anulada", monthStart.Add(12*time.Hour),
				line(8, 5, 2, 3, "120.00"),
			),
		},
	}
}
