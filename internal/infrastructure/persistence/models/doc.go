// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Structure:
//   - base.go: Base persistence models (BaseModel, TenantModel)
//   - sale_record.go: Sale facts read by the analytics aggregator
//   - account.go: Commercial accounts and their service history
package models
