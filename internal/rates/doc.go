// Package rates implements the temperature responses of biological rates.
//
// A [Function] is one thermal model ([Model]) bound to one biological rate
// ([Rate]) and a parameter table. Per-species rates (growth, metabolism)
// scale with the species' own body mass; pairwise rates (attack, handling)
// scale with consumer and resource masses, while temperature terms use the
// consumer's parameters only.
//
// Parameter tables follow the literature defaults. Keys carrying a
// _producer, _invertebrate or _vertebrate suffix apply to that metabolic
// type; any key can be overridden by name:
//
//	f, err := rates.New(rates.ModelExponentialBA, rates.Metabolism, map[string]float64{
//	    "T0_invertebrate": 300.15,
//	})
//	x := f.Evaluate(rates.Species(10, rates.Invertebrate), 290)
package rates
