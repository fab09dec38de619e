package demoserver

// Page is one route of the demo shop. A page has one or more named variants
// that can be switched at runtime, so a watched tab can be re-assessed
// without changing the URL.
type Page struct {
	Path        string
	Description string
	Default     string
	Variants    map[string]string
}

// AllPages returns every demo page. Pages under /checkout are classified as
// checkout; the others are not.
func AllPages() []Page {
	return []Page{
		{
			Path:        "/",
			Description: "Shop front with links to every checkout page",
			Default:     "default",
			Variants:    map[string]string{"default": indexHTML},
		},
		{
			Path:        "/about",
			Description: "Plain content page, never classified as checkout",
			Default:     "default",
			Variants:    map[string]string{"default": aboutHTML},
		},
		{
			Path:        "/checkout/structured",
			Description: "Product described with JSON-LD",
			Default:     "default",
			Variants:    map[string]string{"default": structuredHTML},
		},
		{
			Path:        "/checkout/open-graph",
			Description: "Brand only in Open Graph product tags",
			Default:     "default",
			Variants:    map[string]string{"default": openGraphHTML},
		},
		{
			Path:        "/checkout/microdata",
			Description: "Product described with schema.org microdata",
			Default:     "default",
			Variants:    map[string]string{"default": microdataHTML},
		},
		{
			Path:        "/checkout/keywords",
			Description: "No brand markup; the keyword scan decides",
			Default:     "flagged",
			Variants: map[string]string{
				"flagged": keywordsFlaggedHTML,
				"clean":   keywordsCleanHTML,
			},
		},
	}
}

const indexHTML = `<!doctype html>
<html><head><title>{{.Shop}}</title></head>
<body>
<h1>{{.Shop}}</h1>
<ul>
  <li><a href="/checkout/structured">Trail Tee (JSON-LD)</a></li>
  <li><a href="/checkout/open-graph">Rain Shell (Open Graph)</a></li>
  <li><a href="/checkout/microdata">Denim Jacket (microdata)</a></li>
  <li><a href="/checkout/keywords">Basic Hoodie (keyword scan)</a></li>
  <li><a href="/about">About us</a></li>
</ul>
<p><a href="/demo/control">Variant control panel</a></p>
</body></html>`

const aboutHTML = `<!doctype html>
<html><head><title>About - {{.Shop}}</title></head>
<body><h1>About {{.Shop}}</h1><p>A pretend store for trying out banners.</p></body></html>`

const structuredHTML = `<!doctype html>
<html><head>
<title>Trail Tee - Acme Outdoor</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Product",
  "name": "Trail Tee",
  "brand": {"@type": "Brand", "name": "Acme Outdoor"},
  "countryOfOrigin": "Bangladesh",
  "offers": {"@type": "Offer", "price": "24.00", "priceCurrency": "USD"}
}
</script>
</head>
<body>
<h1>Trail Tee</h1>
<p>Lightweight tee for long days on the trail.</p>
<button>Place order</button>
<footer>{{.Shop}}</footer>
</body></html>`

const openGraphHTML = `<!doctype html>
<html><head>
<title>Rain Shell | {{.Shop}}</title>
<meta property="og:type" content="product">
<meta property="og:title" content="Rain Shell">
<meta property="product:brand" content="Northwind">
<meta property="og:site_name" content="{{.Shop}}">
</head>
<body>
<h1>Rain Shell</h1>
<p>Waterproof shell with taped seams.</p>
<button>Pay now</button>
</body></html>`

const microdataHTML = `<!doctype html>
<html><head><title>Denim Jacket</title></head>
<body>
<div itemscope itemtype="https://schema.org/Product">
  <h1 itemprop="name">Denim Jacket</h1>
  <div itemprop="brand" itemscope itemtype="https://schema.org/Brand">
    <span itemprop="name">Bluewater Denim</span>
  </div>
  <meta itemprop="countryOfOrigin" content="Pakistan">
  <p itemprop="description">Classic jacket in rigid denim.</p>
</div>
<button>Add to bag</button>
</body></html>`

const keywordsFlaggedHTML = `<!doctype html>
<html><head><title>Basic Hoodie</title></head>
<body>
<h1>Basic Hoodie</h1>
<p>Made from cotton sourced in Xinjiang. Our supply chain audit is pending
after reports of forced labor at a spinning mill.</p>
<button>Complete purchase</button>
</body></html>`

const keywordsCleanHTML = `<!doctype html>
<html><head><title>Basic Hoodie</title></head>
<body>
<h1>Basic Hoodie</h1>
<p>Soft fleece hoodie with a kangaroo pocket.</p>
<button>Complete purchase</button>
</body></html>`
