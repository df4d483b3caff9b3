package transfer

type ListingCreation struct {
	Name        string
	Price       string
	Description string
	Location    string
	Contact     string
	Status      string
}

// ListingPatch carries only the fields a caller wants changed. Nil pointers
// and nil slices are omitted from the update entirely, never written as
// empty values.
type ListingPatch struct {
	Name        *string
	Price       *float64
	Description *string
	Location    *string
	Contact     *string
	Status      *string
	Images      []string
	Videos      []string
}
