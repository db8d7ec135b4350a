// Package models defines the core domain models for splitpay.
//
// # Models
//
//   - User: a registered account with a receiving wallet address
//   - Group: a set of members who share expenses
//   - Member: a user's membership in a group, with display name and role
//   - Expense / ExpenseSplit: a shared cost and each member's share of it
//   - Settlement: append-only audit record of a confirmed on-chain transfer
//   - Activity: group feed entries (expense added, settlement, group created)
//
// # Design Principles
//
// 1. **Cent-exact money**: amounts are decimal.Decimal in memory and integer
// cents in storage; never float64
// 2. **Avoid circular references**: use ID strings instead of pointers for relationships
// 3. **Unix timestamps**: CreatedAt/UpdatedAt fields are Unix seconds
package models
