package models

// SiteContent holds the copy rendered by the public pages
type SiteContent struct {
	Brand        string        `yaml:"brand"`
	Tagline      string        `yaml:"tagline"`
	Hero         Hero          `yaml:"hero"`
	Properties   []Property    `yaml:"properties"`
	About        Section       `yaml:"about"`
	Vision       Section       `yaml:"vision"`
	Values       []Value       `yaml:"values"`
	Testimonials []Testimonial `yaml:"testimonials"`
	Contact      ContactInfo   `yaml:"contact"`
}

// Hero is the banner at the top of the home page
type Hero struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	CTA      string `yaml:"cta"`
}

// Property is a listing shown in the property grid
type Property struct {
	Slug      string `yaml:"slug"`
	Title     string `yaml:"title"`
	Location  string `yaml:"location"`
	Price     string `yaml:"price"`
	Bedrooms  int    `yaml:"bedrooms"`
	Bathrooms int    `yaml:"bathrooms"`
	AreaSqft  int    `yaml:"area_sqft"`
	ImageURL  string `yaml:"image_url"`
	Featured  bool   `yaml:"featured"`
}

// Section is a heading with paragraphs
type Section struct {
	Heading    string   `yaml:"heading"`
	Paragraphs []string `yaml:"paragraphs"`
}

// Value is one item of the "our values" list
type Value struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Testimonial is a client quote
type Testimonial struct {
	Author string `yaml:"author"`
	Role   string `yaml:"role"`
	Quote  string `yaml:"quote"`
	Rating int    `yaml:"rating"`
}

// ContactInfo is printed next to the contact form
type ContactInfo struct {
	Email   string `yaml:"email"`
	Phone   string `yaml:"phone"`
	Address string `yaml:"address"`
	Hours   string `yaml:"hours"`
}

// FeaturedProperties returns the listings flagged for the home page
func (c *SiteContent) FeaturedProperties() []Property {
	featured := make([]Property, 0, len(c.Properties))
	for _, p := range c.Properties {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured
}
