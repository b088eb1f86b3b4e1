package models

// The "Registry" is a slice of all models available
//
// It is maintained so that operations that affect all models do not need to explicitly iterate over every single model,
// increasing the risk of forgetting something when adding a new model
var Registry = []any{
	Member{},
	Meal{},
	Deposit{},
	ShoppingExpense{},
	Utility{},
}
