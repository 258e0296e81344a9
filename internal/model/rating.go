package model

// Rating models a single vote in the `ratings` table.  The pair
// (UserID, ComponentID) is unique: a revote replaces the stored score
// and adjusts the component aggregate by the delta instead of adding a
// second row.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – the voting user.
//  ComponentID – the component being rated.
//  Score       – integer score between 1 and 5 inclusive.
type Rating struct {
	ID          uint64 // ratings.id
	UserID      uint64 // ratings.user_id
	ComponentID uint64 // ratings.component_id
	Score       uint8  // ratings.score
}
