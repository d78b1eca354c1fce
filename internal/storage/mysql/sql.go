package mysql

// Note: `text` and `date` are reserved-ish; keep them quoted everywhere.

const insertReviewSQL = "INSERT INTO reviews\n" +
	"  (session_id, location, rating, `text`, `date`, topic)\n" +
	"VALUES (?, ?, ?, ?, ?, ?)"

const reviewColumns = "id, session_id, location, rating, `text`, `date`, topic, sentiment, reply, created_at"

const getReviewSQL = "SELECT " + reviewColumns + "\n" +
	"FROM reviews WHERE id = ? AND session_id = ?"

const listAllSQL = "SELECT " + reviewColumns + "\n" +
	"FROM reviews WHERE session_id = ? ORDER BY id"

// List queries are built dynamically from the filter set; these are the fixed
// prefixes the builder appends WHERE/LIMIT clauses to.
const countPrefix = "SELECT COUNT(*) FROM reviews WHERE "

const selectPrefix = "SELECT " + reviewColumns + " FROM reviews WHERE "
