package store_test

import (
	"context"

	"github.com/frahmantamala/store-management/internal/inventory"
	"github.com/frahmantamala/store-management/internal/store"
	"github.com/frahmantamala/store-management/internal/user"
	"github.com/frahmantamala/store-management/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store Service", func() {
	var (
		ctx      context.Context
		f        *fixture
		service  *store.Service
		users    *user.Service
		corner   *store.Store
		employee *user.User
	)

	expectOutcome := func(resp store.Response, err error, success bool, message string) {
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		ExpectWithOffset(1, resp).To(Equal(store.Response{Success: success, Message: message}))
	}

	succeed := func(resp store.Response, err error) {
		ExpectWithOffset(1, err).NotTo(HaveOccurred())
		ExpectWithOffset(1, resp.Success).To(BeTrue(), resp.Message)
	}

	BeforeEach(func() {
		ctx = context.Background()
		f = newFixture(ctx)
		service = store.NewService(f.repo.Stores(), f.repo.Users(), f.repo.Inventories(), f.repo, nil, logger.Discard())
		users = user.NewService(f.repo.Users(), 4, nil, logger.Discard())

		resp, err := service.CreateStore(ctx, "corner")
		expectOutcome(resp, err, true, store.MsgStoreCreated)
		corner, err = service.GetStore(ctx, "corner")
		Expect(err).NotTo(HaveOccurred())

		created, err := users.CreateUser(ctx, user.CreateUserDTO{Email: "alice@shop.com", Password: "password1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.Success).To(BeTrue())
		employee, err = users.GetUser(ctx, "alice@shop.com")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		f.close()
	})

	Describe("CreateStore", func() {
		It("creates the store with an empty inventory", func() {
			Expect(corner).NotTo(BeNil())
			Expect(corner.Inventory).NotTo(BeNil())
			Expect(corner.Inventory.Items).To(BeEmpty())
		})

		It("rejects empty and duplicate names", func() {
			resp, err := service.CreateStore(ctx, "  ")
			expectOutcome(resp, err, false, store.MsgStoreNameEmpty)

			resp, err = service.CreateStore(ctx, "corner")
			expectOutcome(resp, err, false, store.MsgStoreExists)
		})
	})

	Describe("DeleteStore", func() {
		It("removes the store, its relations and its inventory", func() {
			succeed(service.AddEmployee(ctx, corner, employee.Email))
			_, err := service.CreateInventoryItem(ctx, corner, "apple", 1, 1)
			Expect(err).NotTo(HaveOccurred())
			inventoryID := corner.Inventory.ID

			resp, err := service.DeleteStore(ctx, corner)
			expectOutcome(resp, err, true, store.MsgStoreDeleted)

			gone, err := service.GetStore(ctx, "corner")
			Expect(err).NotTo(HaveOccurred())
			Expect(gone).To(BeNil())

			var rows int64
			Expect(f.db.Table("inventory").Where("id = ?", inventoryID).Count(&rows).Error).To(Succeed())
			Expect(rows).To(BeZero())
			Expect(f.db.Table("inventory_items").Count(&rows).Error).To(Succeed())
			Expect(rows).To(BeZero())
			Expect(f.db.Table("stores_employee").Count(&rows).Error).To(Succeed())
			Expect(rows).To(BeZero())
		})

		It("reports an unknown store", func() {
			resp, err := service.DeleteStore(ctx, store.New("nowhere"))
			expectOutcome(resp, err, false, store.MsgStoreNotFound)
		})
	})

	Describe("SearchStores", func() {
		It("matches a case-insensitive name substring", func() {
			_, err := service.CreateStore(ctx, "Big Mall")
			Expect(err).NotTo(HaveOccurred())

			found, err := service.SearchStores(ctx, "mall")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].Name).To(Equal("Big Mall"))
		})
	})

	Describe("employees", func() {
		It("adds an employee once", func() {
			resp, err := service.AddEmployee(ctx, corner, employee.Email)
			expectOutcome(resp, err, true, store.MsgUserAdded)

			resp, err = service.AddEmployee(ctx, corner, employee.Email)
			expectOutcome(resp, err, false, store.MsgUserAlreadyAdded)

			employees, err := service.GetEmployees(ctx, corner)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(1))

			isEmployee, err := service.IsEmployee(ctx, corner, employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(isEmployee).To(BeTrue())
		})

		It("rejects an unknown user", func() {
			resp, err := service.AddEmployee(ctx, corner, "ghost@shop.com")
			expectOutcome(resp, err, false, store.MsgUserNotFound)
		})

		It("removes an employee", func() {
			succeed(service.AddEmployee(ctx, corner, employee.Email))

			resp, err := service.RemoveEmployee(ctx, corner, employee)
			expectOutcome(resp, err, true, store.MsgUserRemoved)

			isEmployee, _ := service.IsEmployee(ctx, corner, employee)
			Expect(isEmployee).To(BeFalse())
		})

		It("reports a missing user or store on removal", func() {
			resp, err := service.RemoveEmployee(ctx, corner, &user.User{Email: "ghost@shop.com"})
			expectOutcome(resp, err, false, store.MsgUserOrStoreNotFound)

			resp, err = service.RemoveEmployee(ctx, store.New("nowhere"), employee)
			expectOutcome(resp, err, false, store.MsgUserOrStoreNotFound)
		})

		It("drops employment when the user is deleted", func() {
			succeed(service.AddEmployee(ctx, corner, employee.Email))

			_, err := users.DeleteUser(ctx, employee)
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.GetStore(ctx, "corner")
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.Employees).To(BeEmpty())
		})
	})

	Describe("inventory items", func() {
		It("creates, updates and removes an item", func() {
			resp, err := service.CreateInventoryItem(ctx, corner, "apple", 3, 10)
			expectOutcome(resp, err, true, store.MsgItemCreated)

			resp, err = service.UpdateInventoryItem(ctx, corner, &inventory.Item{Name: "apple"}, 4)
			expectOutcome(resp, err, true, store.MsgItemUpdated)

			inv, err := service.GetInventory(ctx, corner)
			Expect(err).NotTo(HaveOccurred())
			apple := inv.FindItem("apple")
			Expect(apple).NotTo(BeNil())
			Expect(apple.Quantity).To(Equal(int64(4)))
			Expect(apple.Price).To(Equal(int64(3)))

			resp, err = service.RemoveInventoryItem(ctx, corner, &inventory.Item{Name: "apple"})
			expectOutcome(resp, err, true, store.MsgItemDeleted)

			inv, _ = service.GetInventory(ctx, corner)
			Expect(inv.Items).To(BeEmpty())
		})

		It("shows a new item in the cached store", func() {
			_, err := service.GetAllStores(ctx)
			Expect(err).NotTo(HaveOccurred())

			succeed(service.CreateInventoryItem(ctx, corner, "apple", 3, 10))

			refreshed, err := service.GetStore(ctx, "corner")
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.Inventory.FindItem("apple")).NotTo(BeNil())
		})

		DescribeTable("validates new items",
			func(name string, price, quantity int64, message string) {
				resp, err := service.CreateInventoryItem(ctx, corner, name, price, quantity)
				expectOutcome(resp, err, false, message)
			},
			Entry("empty name", "", int64(1), int64(1), store.MsgItemNameEmpty),
			Entry("negative price", "apple", int64(-1), int64(1), store.MsgInvalidPrice),
			Entry("negative quantity", "apple", int64(1), int64(-1), store.MsgInvalidQuantity),
		)

		It("rejects a duplicate item name", func() {
			succeed(service.CreateInventoryItem(ctx, corner, "apple", 3, 10))

			resp, err := service.CreateInventoryItem(ctx, corner, "apple", 5, 1)
			expectOutcome(resp, err, false, store.MsgItemExists)
		})

		It("reports unknown items and stores", func() {
			resp, err := service.UpdateInventoryItem(ctx, corner, &inventory.Item{Name: "pear"}, 1)
			expectOutcome(resp, err, false, store.MsgItemNotFound)

			resp, err = service.RemoveInventoryItem(ctx, corner, &inventory.Item{Name: "pear"})
			expectOutcome(resp, err, false, store.MsgItemNotFound)

			resp, err = service.CreateInventoryItem(ctx, store.New("nowhere"), "apple", 1, 1)
			expectOutcome(resp, err, false, store.MsgStoreNotFound)
		})

		It("rejects a negative quantity on update", func() {
			succeed(service.CreateInventoryItem(ctx, corner, "apple", 3, 10))

			resp, err := service.UpdateInventoryItem(ctx, corner, &inventory.Item{Name: "apple"}, -1)
			expectOutcome(resp, err, false, store.MsgInvalidQuantity)
		})
	})

	Describe("permissions", func() {
		It("grants and revokes management permission", func() {
			resp, err := service.AddPermission(ctx, corner, employee)
			expectOutcome(resp, err, true, store.MsgUserAdded)

			resp, err = service.AddPermission(ctx, corner, employee)
			expectOutcome(resp, err, false, store.MsgPermissionGranted)

			granted, err := service.HasPermission(ctx, corner, employee)
			Expect(err).NotTo(HaveOccurred())
			Expect(granted).To(BeTrue())

			holders, err := service.GetEmployeesPermissions(ctx, corner)
			Expect(err).NotTo(HaveOccurred())
			Expect(holders).To(HaveLen(1))

			resp, err = service.RemovePermission(ctx, corner, employee)
			expectOutcome(resp, err, true, store.MsgUserRemoved)

			granted, _ = service.HasPermission(ctx, corner, employee)
			Expect(granted).To(BeFalse())
		})

		It("rejects unknown users and stores", func() {
			resp, err := service.AddPermission(ctx, corner, &user.User{ID: 999})
			expectOutcome(resp, err, false, store.MsgUserNotFound)

			resp, err = service.RemovePermission(ctx, store.New("nowhere"), employee)
			expectOutcome(resp, err, false, store.MsgStoreNotFound)
		})
	})
})
