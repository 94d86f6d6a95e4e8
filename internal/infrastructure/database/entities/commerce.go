package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// TableName specifies the table name for Category.
func (Category) TableName() string {
	return "catalogo_categoria"
}

// Category is a product category.
type Category struct {
	ID       uint      `gorm:"primaryKey"`
	Nombre   string    `gorm:"size:80;uniqueIndex;not null"`
	Activa   bool      `gorm:"default:true"`
	CreadoEn time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Brand.
func (Brand) TableName() string {
	return "catalogo_marca"
}

// Brand is a product brand.
type Brand struct {
	ID       uint      `gorm:"primaryKey"`
	Nombre   string    `gorm:"size:80;uniqueIndex;not null"`
	Activa   bool      `gorm:"default:true"`
	CreadoEn time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Client.
func (Client) TableName() string {
	return "clientes_cliente"
}

// Client is a billing customer.
type Client struct {
	ID       uint      `gorm:"primaryKey"`
	Nombre   string    `gorm:"size:120;not null"`
	Email    string    `gorm:"size:254"`
	Activo   bool      `gorm:"default:true"`
	CreadoEn time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Product.
func (Product) TableName() string {
	return "catalogo_producto"
}

// Product is a catalog item. StockMinimo is optional per product.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Codigo      *string         `gorm:"size:50;uniqueIndex"`
	Nombre      string          `gorm:"size:120;index;not null"`
	MarcaID     *uint           `gorm:"index"`
	Marca       *Brand          `gorm:"foreignKey:MarcaID"`
	CategoriaID uint            `gorm:"index;not null"`
	Categoria   *Category       `gorm:"foreignKey:CategoriaID"`
	Precio      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Stock       int             `gorm:"default:0"`
	StockMinimo *int
	Activo      bool      `gorm:"default:true"`
	CreadoEn    time.Time `gorm:"autoCreateTime"`
}

// TableName specifies the table name for Sale.
func (Sale) TableName() string {
	return "ventas_venta"
}

// Sale is an order header. Only "pagada" sales count as revenue.
type Sale struct {
	ID        uint            `gorm:"primaryKey"`
	Folio     string          `gorm:"size:20;uniqueIndex;not null"`
	ClienteID uint            `gorm:"index;not null"`
	Cliente   *Client         `gorm:"foreignKey:ClienteID"`
	Estado    string          `gorm:"size:12;index;not null;default:'pendiente'"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	CreadoEn  time.Time       `gorm:"index;not null"`
	Items     []SaleItem      `gorm:"foreignKey:VentaID"`
}

// TableName specifies the table name for SaleItem.
func (SaleItem) TableName() string {
	return "ventas_itemventa"
}

// SaleItem is one product line of a sale.
type SaleItem struct {
	ID         uint            `gorm:"primaryKey"`
	VentaID    uint            `gorm:"index;not null"`
	ProductoID uint            `gorm:"index;not null"`
	Producto   *Product        `gorm:"foreignKey:ProductoID"`
	Cantidad   int             `gorm:"not null"`
	PrecioUnit decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Subtotal   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}
