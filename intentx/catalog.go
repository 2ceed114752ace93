package intentx

// Product is one sellable catalog row
type Product struct {
	ID    string
	Title string
	Price string
}

// Category is a titled group of products
type Category struct {
	Title    string
	Products []Product
}

// Catalog is the ordered product list shown to customers
type Catalog []Category

// DefaultCatalog is the MaachBazar storefront
var DefaultCatalog = Catalog{
	{
		Title: "🐟 Fresh Fish",
		Products: []Product{
			{ID: "fish_rohu", Title: "Rohu (রুই)", Price: "₹320/kg"},
			{ID: "fish_katla", Title: "Katla (কাতলা)", Price: "₹350/kg"},
			{ID: "fish_hilsa", Title: "Hilsa (ইলিশ)", Price: "₹1200/kg"},
			{ID: "fish_pomfret", Title: "Pomfret", Price: "₹650/kg"},
			{ID: "fish_bhetki", Title: "Bhetki (বেতকি)", Price: "₹700/kg"},
		},
	},
	{
		Title: "🍗 Fresh Chicken",
		Products: []Product{
			{ID: "chicken_curry", Title: "Curry Cut", Price: "₹280/kg"},
			{ID: "chicken_whole", Title: "Whole Chicken", Price: "₹250/kg"},
			{ID: "chicken_boneless", Title: "Boneless", Price: "₹280/kg"},
		},
	},
	{
		Title: "🦐 Seafood",
		Products: []Product{
			{ID: "prawns_medium", Title: "Prawns (Medium)", Price: "₹450/kg"},
			{ID: "crab", Title: "Crab", Price: "₹600/kg"},
		},
	},
}

// Lookup finds a product by id
func (c Catalog) Lookup(id string) (Product, bool) {
	for _, cat := range c {
		for _, p := range cat.Products {
			if p.ID == id {
				return p, true
			}
		}
	}
	return Product{}, false
}
