// Package rewire tracks extinctions during a run and reassigns the links of
// consumers that lost prey.
//
// The [Engine] is called at every checkpoint. It moves through the phases
// Active, CheckPending and, when new extinctions meet a configured method,
// Rewiring, before returning to Active. Extinction is absorbing: an extinct
// species keeps zero biomass and never regains links.
//
// Three methods are available: [ADBM] (optimal diet breadth from body
// masses), [Gilljam] (replacement by the most similar surviving species) and
// [Staniczenko] (surviving species inside the consumer's niche range).
package rewire
