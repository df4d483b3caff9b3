package transfer

type ToolCreation struct {
	Name        string
	Type        string
	Price       string
	Description string
	Location    string
	ForRent     string
}

type ToolPatch struct {
	Name        *string
	Type        *string
	Price       *float64
	Description *string
	Location    *string
	ForRent     *bool
	Image       *string
}

type ToolFilter struct {
	Type     string
	Location string
	Search   string
	ForRent  *bool
	MinPrice *float64
	MaxPrice *float64
}
