package api

import "encoding/json"

// User is the landlord account record as returned by the backend.
//
// The business counters (PropertiesCount, TenantsCount, ActiveContracts,
// TotalRevenue) are pass-through fields: the core persists and serves them
// but never interprets their values.
type User struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Phone             *string  `json:"phone"`
	UserType          string   `json:"user_type,omitempty"`
	Roles             []string `json:"roles"`
	Address           *string  `json:"address,omitempty"`
	TelegramID        *string  `json:"telegram_id,omitempty"`
	PropertiesCount   int      `json:"properties_count,omitempty"`
	TenantsCount      int      `json:"tenants_count,omitempty"`
	ActiveContracts   int      `json:"active_contracts,omitempty"`
	TotalRevenue      float64  `json:"total_revenue,omitempty"`
	Avatar            string   `json:"avatar,omitempty"`
	ImageURL          string   `json:"image_url,omitempty"`
	PreferredCurrency *string  `json:"preferred_currency,omitempty"`
	Permissions       []string `json:"permissions,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
}

// Session is the token + user pairing representing one authenticated login.
// It exists in memory if and only if the client holds a non-empty token; the
// persisted copy outlives the process and seeds cold-start restoration.
type Session struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the login request body. DeviceName identifies the device
// to the backend; the client fills in a generated identifier when empty.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

// Envelope is the uniform response wrapper used by every landlord endpoint:
// {success, message, data?}. Data stays raw until the caller knows the
// payload shape.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}
