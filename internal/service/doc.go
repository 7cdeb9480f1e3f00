// Package service contains the deck and card use cases. It checks that the
// current user owns what they touch, validates input and coordinates the
// stores in internal/store, running multi-store writes in one transaction.
//
// Services receive their dependencies through constructor injection: the
// stores, a transactor, an identity provider and a logger. They never depend
// on a concrete storage implementation.
//
// Reviewing and scheduling live in the card_review subpackage.
package service
