// Package foodweb holds food web matrices and the niche model generator.
//
// A food web is a square 0/1 matrix with predators in rows and prey in
// columns: A[i][j] == 1 means species i eats species j. Species with an empty
// row are primary producers.
//
//	rng := rand.New(rand.NewSource(42))
//	web, err := foodweb.NicheModel(rng, 10, foodweb.ConnectanceTarget(0.3), foodweb.DefaultGenerateOptions())
//	ranks, err := foodweb.TrophicRank(web.A)
package foodweb
