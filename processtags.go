package cbmcore

// Process tags carried by Ops and used to attribute flux to
// indicators.
const (
	ProcessGrowthAndMortality = "growth_and_mortality"
	ProcessDecay              = "decay"
	ProcessDisturbance        = "disturbance"
)

// Standard flux indicator names produced by the annual step driver.
const (
	IndicatorDisturbance     = "Disturbance"
	IndicatorDecay           = "Decay"
	IndicatorGrowthTurnover  = "Growth and Turnover"
	IndicatorDisturbanceCO2  = "DisturbanceCO2Production"
)
