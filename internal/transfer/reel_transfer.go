package transfer

type ReelCreation struct {
	Description string
	Tags        string // comma separated, as submitted in the form
}

type ReelPatch struct {
	Description *string
	Tags        []string
	VideoURL    *string
}
