package repository

// Repos repositorios atados a una misma transacción (los entrega el TxRunner).
type Repos struct {
	Templates     TemplateRepository
	InTransit     LotInTransitRepository
	OnHand        LotOnHandRepository
	Sales         SaleRepository
	Discrepancies DiscrepancyRepository
	Warehouses    WarehouseRepository
}
