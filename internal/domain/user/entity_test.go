package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatShippingAddress(t *testing.T) {
	a := Address{Street: "12 Lake Road", City: "Pune", State: "MH", PostalCode: "411001", Phone: "999"}

	assert.Equal(t, "12 Lake Road, Pune, MH - 411001", FormatShippingAddress(a))
}

func TestIsStaff(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsStaff())
	assert.True(t, (&User{Role: RoleProductManager}).IsStaff())
	assert.False(t, (&User{Role: RoleCustomer}).IsStaff())
}
