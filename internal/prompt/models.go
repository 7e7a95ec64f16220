package prompt

// LibraryNameData fills the library_name template.
type LibraryNameData struct {
	Language string
	Topic    string
	Purpose  string
	Count    int
	Seed     int
}
