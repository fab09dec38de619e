package assessor

// Term is one entry of a keyword table.
type Term struct {
	Term   string
	Weight int
	Reason string
	Level  RiskLevel
}

const (
	highWeight     = 3
	moderateWeight = 1
)

// HighRiskTerms weigh 3 each. No term in either table is a substring of
// another, so a phrase is never counted twice.
var HighRiskTerms = []Term{
	{"forced labor", highWeight, "Forced labor is linked to this product's supply chain.", RiskHigh},
	{"forced labour", highWeight, "Forced labour is linked to this product's supply chain.", RiskHigh},
	{"child labor", highWeight, "Child labor has been reported in this sector.", RiskHigh},
	{"child labour", highWeight, "Child labour has been reported in this sector.", RiskHigh},
	{"uyghur", highWeight, "Uyghur forced labor programs are documented in this region's supply chains.", RiskHigh},
	{"xinjiang", highWeight, "Goods from Xinjiang are presumed made with forced labor under the UFLPA.", RiskHigh},
	{"uflpa", highWeight, "Mentions the Uyghur Forced Labor Prevention Act.", RiskHigh},
	{"modern slavery", highWeight, "Modern slavery is referenced on this page.", RiskHigh},
	{"human trafficking", highWeight, "Human trafficking is referenced on this page.", RiskHigh},
	{"debt bondage", highWeight, "Debt bondage is a common forced labor indicator.", RiskHigh},
	{"prison labor", highWeight, "Prison labor may be used in production.", RiskHigh},
	{"sweatshop", highWeight, "Sweatshop conditions are referenced on this page.", RiskHigh},
}

// ModerateRiskTerms weigh 1 each.
var ModerateRiskTerms = []Term{
	{"supply chain", moderateWeight, "Supply chain sourcing is discussed.", RiskModerate},
	{"made in china", moderateWeight, "Manufactured in a country with documented forced labor risk.", RiskModerate},
	{"cotton", moderateWeight, "Cotton is a high-risk commodity for forced labor.", RiskModerate},
	{"polysilicon", moderateWeight, "Polysilicon supply chains are linked to Xinjiang.", RiskModerate},
	{"palm oil", moderateWeight, "Palm oil production has documented labor abuses.", RiskModerate},
	{"cocoa", moderateWeight, "Cocoa farming has documented child labor.", RiskModerate},
	{"cobalt", moderateWeight, "Cobalt mining has documented child labor.", RiskModerate},
	{"conflict minerals", moderateWeight, "Conflict minerals are referenced on this page.", RiskModerate},
	{"fast fashion", moderateWeight, "Fast fashion relies on low-cost labor with weak oversight.", RiskModerate},
	{"seafood", moderateWeight, "Fishing fleets have documented forced labor.", RiskModerate},
	{"rubber gloves", moderateWeight, "Glove manufacturing has documented debt bondage.", RiskModerate},
}
