package domain

// UserDetails is the security view of a user: the account plus the
// permissions it holds. It is built per authentication attempt and never
// stored.
type UserDetails struct {
	User        User
	Permissions []Permission

	authorities []string
}

// NewUserDetails adapts a user and its permission list.
func NewUserDetails(u User, perms []Permission) UserDetails {
	return UserDetails{
		User:        u,
		Permissions: perms,
		authorities: authoritiesOf(perms),
	}
}

func (d UserDetails) UserID() string       { return d.User.ID }
func (d UserDetails) Username() string     { return d.User.Username }
func (d UserDetails) PasswordHash() string { return d.User.PasswordHash }
func (d UserDetails) Enabled() bool        { return d.User.Enabled() }

// Authorities returns the non-empty values of enabled permissions, in
// permission order with duplicates removed.
func (d UserDetails) Authorities() []string {
	out := make([]string, len(d.authorities))
	copy(out, d.authorities)
	return out
}

func authoritiesOf(perms []Permission) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p.Value == "" || !p.Enabled() {
			continue
		}
		if _, dup := seen[p.Value]; dup {
			continue
		}
		seen[p.Value] = struct{}{}
		out = append(out, p.Value)
	}
	return out
}
