// Package mongostore implements the family store on MongoDB.
//
// Records map 1:1 to the bson-tagged structs of pkg/family, spread over the
// collections families, members, relations, and regions. Application ids
// (uuid strings) live in an indexed "id" field; Mongo's own _id stays
// internal.
package mongostore

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

const (
	colFamilies  = "families"
	colMembers   = "members"
	colRelations = "relations"
	colRegions   = "regions"

	connectTimeout = 10 * time.Second
)

// Options configures the MongoDB connection.
type Options struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database is the database name. Defaults to "stammbaum".
	Database string
}

// MongoStore is a family.Store backed by MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ family.Store = (*MongoStore)(nil)

// NewMongoStore connects, verifies the connection, and ensures indexes.
func NewMongoStore(ctx context.Context, opts Options) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, errors.New(errors.ErrCodeConfig, "mongo uri cannot be empty")
	}
	if opts.Database == "" {
		opts.Database = "stammbaum"
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}

	s := &MongoStore{client: client, db: client.Database(opts.Database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	unique := mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	byTree := mongo.IndexModel{Keys: bson.D{{Key: "tree_id", Value: 1}}}

	for _, col := range []string{colFamilies, colMembers, colRelations, colRegions} {
		if _, err := s.db.Collection(col).Indexes().CreateOne(ctx, unique); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "create id index on %s", col)
		}
	}
	for _, col := range []string{colMembers, colRelations, colRegions} {
		if _, err := s.db.Collection(col).Indexes().CreateOne(ctx, byTree); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "create tree index on %s", col)
		}
	}
	return nil
}

// =============================================================================
// Families
// =============================================================================

// CreateFamily stores a new family record.
func (s *MongoStore) CreateFamily(ctx context.Context, f *family.Family) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New(errors.ErrCodeValidation, "family name cannot be empty")
	}
	_, err := s.db.Collection(colFamilies).InsertOne(ctx, f)
	if mongo.IsDuplicateKeyError(err) {
		return errors.New(errors.ErrCodeValidation, "family %s already exists", f.ID)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "insert family %s", f.ID)
	}
	return nil
}

// Family returns the family with the given id.
func (s *MongoStore) Family(ctx context.Context, id string) (*family.Family, error) {
	var f family.Family
	err := s.db.Collection(colFamilies).FindOne(ctx, bson.M{"id": id}).Decode(&f)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "family %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load family %s", id)
	}
	return &f, nil
}

// Families returns all families sorted by id.
func (s *MongoStore) Families(ctx context.Context) ([]*family.Family, error) {
	cur, err := s.db.Collection(colFamilies).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list families")
	}
	out := []*family.Family{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode families")
	}
	return out, nil
}

// DeleteFamily removes a family and everything belonging to it.
func (s *MongoStore) DeleteFamily(ctx context.Context, id string) error {
	res, err := s.db.Collection(colFamilies).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete family %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "family %s not found", id)
	}
	byTree := bson.M{"tree_id": id}
	for _, col := range []string{colMembers, colRelations, colRegions} {
		if _, err := s.db.Collection(col).DeleteMany(ctx, byTree); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "cascade delete %s of family %s", col, id)
		}
	}
	return nil
}

// =============================================================================
// Members
// =============================================================================

// PutMember inserts or updates a member record.
func (s *MongoStore) PutMember(ctx context.Context, m *family.Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if err := s.requireFamily(ctx, m.TreeID); err != nil {
		return err
	}
	_, err := s.db.Collection(colMembers).ReplaceOne(ctx,
		bson.M{"id": m.ID}, m, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "put member %s", m.ID)
	}
	return nil
}

// Member returns the member with the given id.
func (s *MongoStore) Member(ctx context.Context, id string) (*family.Member, error) {
	var m family.Member
	err := s.db.Collection(colMembers).FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "member %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load member %s", id)
	}
	return &m, nil
}

// Members returns the members held by a tree, sorted by sort order then id.
func (s *MongoStore) Members(ctx context.Context, treeID string) ([]*family.Member, error) {
	cur, err := s.db.Collection(colMembers).Find(ctx, bson.M{"tree_id": treeID},
		options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list members of %s", treeID)
	}
	out := []*family.Member{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode members of %s", treeID)
	}
	return out, nil
}

// DeleteMember removes a member, its relations, and its region memberships.
func (s *MongoStore) DeleteMember(ctx context.Context, id string) error {
	res, err := s.db.Collection(colMembers).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete member %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "member %s not found", id)
	}
	_, err = s.db.Collection(colRelations).DeleteMany(ctx, bson.M{
		"$or": []bson.M{{"from": id}, {"to": id}},
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete relations of member %s", id)
	}
	_, err = s.db.Collection(colRegions).UpdateMany(ctx,
		bson.M{"member_ids": id},
		bson.M{"$pull": bson.M{"member_ids": id}})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "remove member %s from regions", id)
	}
	return nil
}

// =============================================================================
// Relations
// =============================================================================

// PutRelation inserts a relation after checking endpoints and duplicates.
func (s *MongoStore) PutRelation(ctx context.Context, r *family.Relation) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, id := range []string{r.From, r.To} {
		n, err := s.db.Collection(colMembers).CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "check member %s", id)
		}
		if n == 0 {
			return errors.New(errors.ErrCodeNotFound, "member %s not found", id)
		}
	}

	dup := bson.M{
		"tree_id": r.TreeID,
		"kind":    r.Kind,
		"from":    r.From,
		"to":      r.To,
		"id":      bson.M{"$ne": r.ID},
	}
	if r.Kind == family.RelationParentChild {
		dup["parent_role"] = r.ParentRole
	}
	n, err := s.db.Collection(colRelations).CountDocuments(ctx, dup)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "check duplicate relation")
	}
	if n > 0 {
		return errors.New(errors.ErrCodeValidation, "relation %s→%s (%s) already exists", r.From, r.To, r.Kind)
	}

	_, err = s.db.Collection(colRelations).ReplaceOne(ctx,
		bson.M{"id": r.ID}, r, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "put relation %s", r.ID)
	}
	return nil
}

// Relation returns the relation with the given id.
func (s *MongoStore) Relation(ctx context.Context, id string) (*family.Relation, error) {
	var r family.Relation
	err := s.db.Collection(colRelations).FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "relation %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load relation %s", id)
	}
	return &r, nil
}

// Relations returns a tree's relations sorted by id.
func (s *MongoStore) Relations(ctx context.Context, treeID string) ([]*family.Relation, error) {
	cur, err := s.db.Collection(colRelations).Find(ctx, bson.M{"tree_id": treeID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list relations of %s", treeID)
	}
	out := []*family.Relation{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode relations of %s", treeID)
	}
	return out, nil
}

// DeleteRelation removes a relation.
func (s *MongoStore) DeleteRelation(ctx context.Context, id string) error {
	res, err := s.db.Collection(colRelations).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete relation %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "relation %s not found", id)
	}
	return nil
}

// =============================================================================
// Regions
// =============================================================================

// PutRegion inserts or updates a region record.
func (s *MongoStore) PutRegion(ctx context.Context, rg *family.Region) error {
	if err := errors.ValidateRegionName(rg.Name); err != nil {
		return err
	}
	if err := s.requireFamily(ctx, rg.TreeID); err != nil {
		return err
	}
	_, err := s.db.Collection(colRegions).ReplaceOne(ctx,
		bson.M{"id": rg.ID}, rg, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "put region %s", rg.ID)
	}
	return nil
}

// Region returns the region with the given id.
func (s *MongoStore) Region(ctx context.Context, id string) (*family.Region, error) {
	var rg family.Region
	err := s.db.Collection(colRegions).FindOne(ctx, bson.M{"id": id}).Decode(&rg)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load region %s", id)
	}
	return &rg, nil
}

// Regions returns a family's regions sorted by id.
func (s *MongoStore) Regions(ctx context.Context, treeID string) ([]*family.Region, error) {
	cur, err := s.db.Collection(colRegions).Find(ctx, bson.M{"tree_id": treeID},
		options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list regions of %s", treeID)
	}
	out := []*family.Region{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode regions of %s", treeID)
	}
	return out, nil
}

// DeleteRegion removes a region. Unknown ids are a no-op.
func (s *MongoStore) DeleteRegion(ctx context.Context, id string) error {
	if _, err := s.db.Collection(colRegions).DeleteOne(ctx, bson.M{"id": id}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete region %s", id)
	}
	return nil
}

// =============================================================================
// Snapshot and Lifecycle
// =============================================================================

// Tree loads the full snapshot for one family.
func (s *MongoStore) Tree(ctx context.Context, familyID string) (*family.Tree, error) {
	f, err := s.Family(ctx, familyID)
	if err != nil {
		return nil, err
	}
	members, err := s.Members(ctx, familyID)
	if err != nil {
		return nil, err
	}
	relations, err := s.Relations(ctx, familyID)
	if err != nil {
		return nil, err
	}
	regions, err := s.Regions(ctx, familyID)
	if err != nil {
		return nil, err
	}
	t := &family.Tree{Family: f, Members: members, Relations: relations, Regions: regions}
	t.Sort()
	return t, nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "disconnect from mongodb")
	}
	return nil
}

func (s *MongoStore) requireFamily(ctx context.Context, treeID string) error {
	n, err := s.db.Collection(colFamilies).CountDocuments(ctx, bson.M{"id": treeID})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "check family %s", treeID)
	}
	if n == 0 {
		return errors.New(errors.ErrCodeNotFound, "family %s not found", treeID)
	}
	return nil
}
