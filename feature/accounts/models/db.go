package models

// ArchiverAccount represents the 'accounts' table of the archiver database.
type ArchiverAccount struct {
	AccountID string `gorm:"column:accountId;type:varchar(255);primaryKey"`
	Data      string `gorm:"column:data;type:text"`
}

func (ArchiverAccount) TableName() string {
	return "accounts"
}

// NodeAccountEntry represents the 'accountsEntry' table of a node database.
type NodeAccountEntry struct {
	AccountID string `gorm:"column:accountId;type:varchar(255);primaryKey"`
	Data      string `gorm:"column:data;type:text"`
}

func (NodeAccountEntry) TableName() string {
	return "accountsEntry"
}
