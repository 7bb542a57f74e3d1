package model

import (
	"strings"
	"time"
)

// RecordType is the closed set of business-stage/risk categories a customer
// record moves through.
type RecordType string

const (
	TypeELS           RecordType = "els"
	TypeStockNew      RecordType = "stock_new"
	TypeStockOld      RecordType = "stock_old"
	TypeCoinNew       RecordType = "coin_new"
	TypeCoinOld       RecordType = "coin_old"
	TypePotential     RecordType = "potential"
	TypeCustomerFund1 RecordType = "customer_fund1"
	TypeCustomerFund2 RecordType = "customer_fund2"
	TypeCustomerFund3 RecordType = "customer_fund3"
	TypeBlackLongterm RecordType = "black_longterm"
	TypeBlackNoID     RecordType = "black_notIdentity"
	TypeBlackWrongNum RecordType = "black_wrongnumber"
)

var recordTypes = map[RecordType]struct{}{
	TypeELS: {}, TypeStockNew: {}, TypeStockOld: {},
	TypeCoinNew: {}, TypeCoinOld: {}, TypePotential: {},
	TypeCustomerFund1: {}, TypeCustomerFund2: {}, TypeCustomerFund3: {},
	TypeBlackLongterm: {}, TypeBlackNoID: {}, TypeBlackWrongNum: {},
}

func (t RecordType) String() string { return string(t) }

func (t RecordType) Valid() bool {
	_, ok := recordTypes[t]
	return ok
}

// ParseRecordType trims input and reports whether it names a known category.
func ParseRecordType(s string) (RecordType, bool) {
	t := RecordType(strings.TrimSpace(s))
	return t, t.Valid()
}

// Record is the DB entity persisted in the records table. Manager is a plain
// username string, not an enforced reference: it may point at a deleted user.
type Record struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name,omitempty"`
	PhoneNumber string     `db:"phonenumber" json:"phonenumber"`
	Sex         string     `db:"sex" json:"sex,omitempty"`
	IncomePath  string     `db:"incomepath" json:"incomepath,omitempty"`
	CreatorName string     `db:"creatorname" json:"creatorname,omitempty"`
	Memo        string     `db:"memo" json:"memo,omitempty"`
	Type        RecordType `db:"type" json:"type"`
	Manager     string     `db:"manager" json:"manager,omitempty"`
	IncomeDate  string     `db:"incomedate" json:"incomedate,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// RecordInput carries the fields accepted when creating a record.
type RecordInput struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phonenumber"`
	Sex         string `json:"sex"`
	IncomePath  string `json:"incomepath"`
	CreatorName string `json:"creatorname"`
	Memo        string `json:"memo"`
	Type        string `json:"type"`
	Manager     string `json:"manager"`
	IncomeDate  string `json:"incomedate"`
}

// RecordPatch lists the fields a partial update intends to change. A nil
// field is left untouched; a set field whose value trims to blank is also
// skipped, blank never overwrites.
type RecordPatch struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phonenumber,omitempty"`
	Sex         *string `json:"sex,omitempty"`
	IncomePath  *string `json:"incomepath,omitempty"`
	CreatorName *string `json:"creatorname,omitempty"`
	Memo        *string `json:"memo,omitempty"`
	Type        *string `json:"type,omitempty"`
	Manager     *string `json:"manager,omitempty"`
	IncomeDate  *string `json:"incomedate,omitempty"`
}

// Page is one slice of a filtered listing plus the total count for the same
// predicate, independent of limit/offset.
type Page struct {
	Records []Record `json:"records"`
	Total   int64    `json:"total"`
}
