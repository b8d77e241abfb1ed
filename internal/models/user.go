package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const RoleAdmin = "admin"

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Email    string             `bson:"email" json:"email"`
	Name     string             `bson:"name,omitempty" json:"name,omitempty"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password string             `bson:"password,omitempty" json:"-"` // bcrypt hash, never serialized
	Role     string             `bson:"role,omitempty" json:"role,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
