package demoserver

// Config holds configuration for the demo shop.
type Config struct {
	// Port is the port on which the demo shop listens.
	Port int

	// ShopName is printed in page headers and footers. It is deliberately not
	// a brand any page sells.
	ShopName string
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:     9999,
		ShopName: "Demo Outlet",
	}
}
