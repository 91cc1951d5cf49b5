// Package engine runs the submission pipeline.
//
// Submit takes one transaction through every stage in a fixed order:
//
//  1. validate the request shape
//  2. authorize the sender against the tier policy (access.Registry)
//  3. integrate the external modifier (modifier.Integrator), or take an
//     explicit modifier value
//  4. compute the weight (weight.Engine)
//  5. stamp seq from the logical clock and an ID from the generator
//  6. classify: published when weight >= the publish threshold, else dropped
//  7. append to the ledger, when one is configured
//
// An authorization failure stops the pipeline at step 2 and nothing is
// recorded. A modifier read failure never stops it; the modifier degrades
// to 0 and an audit event is emitted.
//
// Ordering uses seq only. Transaction timestamps are advisory input to the
// weight and are never compared.
package engine
