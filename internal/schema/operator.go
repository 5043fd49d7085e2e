package schema

// OperatorSchema is the signed-in console user as returned by the auth routes
var OperatorSchema = Define("Operator",
	IntField("id").Generated(),
	StringField("username").Required(),
	StringField("firstName"),
	StringField("lastName"),
	StringField("email"),
	StringField("role").Required(),
)

// LoginSchema is the body of a login request
var LoginSchema = Define("Login",
	StringField("username").Required().NonEmpty(),
	StringField("password").Required().NonEmpty(),
)

// Operator is the public view of a console user
type Operator struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Role      string  `json:"role"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
